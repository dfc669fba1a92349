package telegram

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gembot/app/config"
	"gembot/app/service/queue"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const pollTimeoutSeconds = 30

// Client wraps the Telegram Bot API: long-polls updates into the queue and
// sends replies back on behalf of the processing loop.
type Client struct {
	cfg      *config.Config
	bot      *tgbotapi.BotAPI
	queueSvc *queue.Service
	http     *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, oops.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Authorized on telegram", "username", bot.Self.UserName)

	return &Client{
		cfg:      cfg,
		bot:      bot,
		queueSvc: do.MustInvoke[*queue.Service](di),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// RunPollLoop long-polls Telegram for updates until the context is cancelled.
// Only plain messages are forwarded; edits, callbacks and channel posts are
// ignored.
func (c *Client) RunPollLoop(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds

	updates := c.bot.GetUpdatesChan(u)
	defer c.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || update.Message.From == nil {
				continue
			}

			c.queueSvc.Add(toQueueMessage(update.Message))
		}
	}
}

func toQueueMessage(msg *tgbotapi.Message) queue.Message {
	result := queue.Message{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.MessageID,
		UserID:      msg.From.ID,
		Username:    msg.From.UserName,
		FirstName:   msg.From.FirstName,
		Text:        msg.Text,
		Caption:     msg.Caption,
		IsCommand:   msg.IsCommand(),
		Command:     msg.Command(),
		CommandArgs: msg.CommandArguments(),
	}

	for _, photo := range msg.Photo {
		result.Photos = append(result.Photos, queue.Photo{
			FileID:   photo.FileID,
			FileSize: photo.FileSize,
			Width:    photo.Width,
			Height:   photo.Height,
		})
	}

	return result
}

// SendMessage sends a Markdown-formatted message, retrying as plain text when
// Telegram rejects the markup.
func (c *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := c.bot.Send(msg); err != nil {
		if !strings.Contains(err.Error(), "can't parse entities") {
			return oops.Errorf("failed to send message: %w", err)
		}

		plain := tgbotapi.NewMessage(chatID, text)
		if _, err = c.bot.Send(plain); err != nil {
			return oops.Errorf("failed to send plain message: %w", err)
		}
	}

	return nil
}

// SendNotice sends a plain text message and returns its ID for later editing.
func (c *Client) SendNotice(chatID int64, text string) (int, error) {
	sent, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, oops.Errorf("failed to send notice: %w", err)
	}

	return sent.MessageID, nil
}

func (c *Client) EditMessage(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)

	if _, err := c.bot.Send(edit); err != nil {
		return oops.Errorf("failed to edit message: %w", err)
	}

	return nil
}

func (c *Client) DeleteMessage(chatID int64, messageID int) {
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		slog.Warn("failed to delete message", "chat_id", chatID, "error", err)
	}
}

func (c *Client) SendTyping(chatID int64) {
	if _, err := c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		slog.Warn("failed to send chat action", "chat_id", chatID, "error", err)
	}
}

func (c *Client) SendUploadingPhoto(chatID int64) {
	if _, err := c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadPhoto)); err != nil {
		slog.Warn("failed to send chat action", "chat_id", chatID, "error", err)
	}
}

func (c *Client) SendPhoto(chatID int64, data []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "generated.png",
		Bytes: data,
	})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdown

	if _, err := c.bot.Send(photo); err != nil {
		return oops.Errorf("failed to send photo: %w", err)
	}

	return nil
}

// DownloadFile fetches the file behind a Telegram file ID.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, oops.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, oops.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, oops.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.Errorf("unexpected download status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.Errorf("failed to read file body: %w", err)
	}

	return data, nil
}
