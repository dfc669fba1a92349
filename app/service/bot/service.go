package bot

import (
	"context"
	"log/slog"
	"time"

	"gembot/app/client/geminiai"
	"gembot/app/client/telegram"
	"gembot/app/config"
	"gembot/app/service/queue"
	"gembot/app/service/state"

	"github.com/samber/do"
)

// platformClient is the slice of the Telegram client the processing loop uses.
type platformClient interface {
	SendMessage(chatID int64, text string) error
	SendNotice(chatID int64, text string) (int, error)
	EditMessage(chatID int64, messageID int, text string) error
	DeleteMessage(chatID int64, messageID int)
	SendTyping(chatID int64)
	SendUploadingPhoto(chatID int64)
	SendPhoto(chatID int64, data []byte, caption string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// aiClient is the slice of the Gemini client the processing loop uses.
type aiClient interface {
	Chat(ctx context.Context, turns []state.Turn) (string, error)
	AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// Service is the inbound processing loop: it consumes queued Telegram events
// one at a time, routes them through the state coordinator and talks to
// Gemini. All shared state lives in the coordinator; this loop never holds it
// across an external call.
type Service struct {
	cfg      *config.Config
	platform platformClient
	ai       aiClient
	stateSvc *state.Service
	queueSvc *queue.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:      do.MustInvoke[*config.Config](di),
		platform: do.MustInvoke[*telegram.Client](di),
		ai:       do.MustInvoke[*geminiai.Client](di),
		stateSvc: do.MustInvoke[*state.Service](di),
		queueSvc: do.MustInvoke[*queue.Service](di),
	}, nil
}

func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.queueSvc.Channel():
			if !ok {
				return
			}

			start := time.Now()
			s.dispatch(ctx, msg)

			slog.Info("Processed update",
				"user_id", msg.UserID,
				"username", msg.Username,
				"command", msg.Command,
				"duration", time.Since(start))
		}
	}
}

func (s *Service) dispatch(ctx context.Context, msg queue.Message) {
	if msg.IsCommand {
		s.dispatchCommand(ctx, msg)
		return
	}

	switch {
	case len(msg.Photos) > 0:
		s.handlePhoto(ctx, msg)
	case msg.Text != "":
		s.handleText(ctx, msg)
	}
}

func (s *Service) dispatchCommand(ctx context.Context, msg queue.Message) {
	switch msg.Command {
	case "start":
		s.handleStart(msg)
	case "help":
		s.handleHelp(msg)
	case "generate":
		s.handleGenerate(ctx, msg)
	case "status":
		s.handleStatus(msg)
	case "clear":
		s.handleClear(msg)
	case "admin":
		s.handleAdmin(msg)
	case "stats":
		s.handleStats(msg)
	default:
		s.reply(msg.ChatID, "Unknown command. Use /help to see what I can do.")
	}
}

// isAdmin is the capability check for admin-only commands. The coordinator
// itself knows nothing about privilege.
func (s *Service) isAdmin(userID int64) bool {
	return userID == s.cfg.Telegram.AdminID
}

func (s *Service) reply(chatID int64, text string) {
	if err := s.platform.SendMessage(chatID, text); err != nil {
		slog.Error("Failed to send reply", "chat_id", chatID, "error", err)
	}
}
