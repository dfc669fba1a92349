package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gembot/app/service/queue"
	"gembot/app/service/state"

	"github.com/elliotchance/pie/v2"
)

const (
	rateLimitedReply   = "⚠️ You're sending requests too quickly. Please wait a moment."
	genericFailure     = "❌ Sorry, I encountered an error. Please try again."
	generatingNotice   = "🎨 Generating your image, please wait..."
	analyzingNotice    = "🔍 Analyzing your image, please wait..."
	accessDeniedReply  = "❌ Access denied. Admin only."
	clearedReply       = "🗑️ Conversation context cleared! Starting fresh."
	generateUsageReply = "Please provide a prompt for image generation.\n" +
		"Example: /generate a beautiful sunset over mountains"
)

func (s *Service) handleStart(msg queue.Message) {
	welcome := fmt.Sprintf(
		"🤖 Welcome to Advanced Gemini AI Bot, %s!\n\n"+
			"🌟 *Features:*\n"+
			"• 💬 Chat with Gemini AI\n"+
			"• 🖼️ Generate images with /generate\n"+
			"• 🔍 Analyze images (just send a photo)\n"+
			"• 📊 Get bot status with /status\n\n"+
			"Simply send me a message to start chatting!",
		msg.FirstName)

	if s.isAdmin(msg.UserID) {
		welcome += "\n🔧 *Admin Commands:*\n• /admin - Admin panel\n• /stats - Detailed statistics\n"
	}

	s.reply(msg.ChatID, welcome)
}

func (s *Service) handleHelp(msg queue.Message) {
	s.reply(msg.ChatID,
		"🤖 *Bot Commands:*\n\n"+
			"🔹 /start - Welcome message\n"+
			"🔹 /help - This help message\n"+
			"🔹 /generate <prompt> - Generate an image\n"+
			"🔹 /status - Bot status information\n"+
			"🔹 /clear - Clear conversation context\n\n"+
			"💬 *Chat Features:*\n"+
			"• Send any text message to chat with Gemini AI\n"+
			"• Send photos for detailed image analysis\n"+
			"• Context is maintained for better conversations")
}

func (s *Service) handleText(ctx context.Context, msg queue.Message) {
	outcome, turns := s.stateSvc.TryHandleMessage(msg.UserID, msg.Text, time.Now())
	if outcome == state.RateLimited {
		s.reply(msg.ChatID, rateLimitedReply)
		return
	}

	s.platform.SendTyping(msg.ChatID)

	response, err := s.ai.Chat(ctx, turns)
	if err != nil {
		slog.Error("Failed to generate chat reply",
			"user_id", msg.UserID,
			"error", err)
		s.stateSvc.RecordError()
		s.reply(msg.ChatID, genericFailure)

		// The user turn stays in context; no assistant turn is appended.
		return
	}

	s.stateSvc.RecordAssistantTurn(msg.UserID, response)
	s.reply(msg.ChatID, formatMessage(response, s.cfg.Limits.MaxMessageLength))
}

func (s *Service) handleGenerate(ctx context.Context, msg queue.Message) {
	if s.stateSvc.AdmitRequest(msg.UserID, time.Now()) == state.RateLimited {
		s.reply(msg.ChatID, rateLimitedReply)
		return
	}

	prompt := strings.TrimSpace(msg.CommandArgs)
	if prompt == "" {
		s.reply(msg.ChatID, generateUsageReply)
		return
	}

	s.platform.SendUploadingPhoto(msg.ChatID)

	noticeID, err := s.platform.SendNotice(msg.ChatID, generatingNotice)
	if err != nil {
		slog.Error("Failed to send generating notice", "chat_id", msg.ChatID, "error", err)
		return
	}

	image, description, err := s.ai.GenerateImage(ctx, prompt)
	if err != nil {
		slog.Error("Failed to generate image",
			"user_id", msg.UserID,
			"prompt", prompt,
			"error", err)
		s.stateSvc.RecordError()
		s.editNotice(msg.ChatID, noticeID, "❌ Failed to generate image. Please try again.")
		return
	}

	caption := fmt.Sprintf("🎨 *Generated Image*\n\n*Prompt:* %s", prompt)
	if description != "" {
		caption += "\n\n" + description
	}

	if err = s.platform.SendPhoto(msg.ChatID, image, caption); err != nil {
		slog.Error("Failed to send generated photo", "chat_id", msg.ChatID, "error", err)
		s.stateSvc.RecordError()
		s.editNotice(msg.ChatID, noticeID, "❌ Failed to deliver the generated image.")
		return
	}

	s.stateSvc.RecordImageEvent(state.ImageGenerated)
	s.platform.DeleteMessage(msg.ChatID, noticeID)
}

func (s *Service) handlePhoto(ctx context.Context, msg queue.Message) {
	if s.stateSvc.AdmitRequest(msg.UserID, time.Now()) == state.RateLimited {
		s.reply(msg.ChatID, rateLimitedReply)
		return
	}

	s.platform.SendTyping(msg.ChatID)

	noticeID, err := s.platform.SendNotice(msg.ChatID, analyzingNotice)
	if err != nil {
		slog.Error("Failed to send analyzing notice", "chat_id", msg.ChatID, "error", err)
		return
	}

	photo := largestPhoto(msg.Photos)

	maxBytes := s.cfg.Limits.MaxImageSizeMB * 1024 * 1024
	if photo.FileSize > maxBytes {
		s.editNotice(msg.ChatID, noticeID,
			fmt.Sprintf("❌ Image is too large. Maximum size is %dMB.", s.cfg.Limits.MaxImageSizeMB))
		return
	}

	image, err := s.platform.DownloadFile(ctx, photo.FileID)
	if err != nil {
		slog.Error("Failed to download photo",
			"user_id", msg.UserID,
			"file_id", photo.FileID,
			"error", err)
		s.stateSvc.RecordError()
		s.editNotice(msg.ChatID, noticeID, "❌ Failed to download your image. Please try again.")
		return
	}

	prompt := ""
	if msg.Caption != "" {
		prompt = fmt.Sprintf("User caption: %s\n\nPlease analyze this image.", msg.Caption)
	}

	analysis, err := s.ai.AnalyzeImage(ctx, image, prompt)
	if err != nil {
		slog.Error("Failed to analyze photo",
			"user_id", msg.UserID,
			"error", err)
		s.stateSvc.RecordError()
		s.editNotice(msg.ChatID, noticeID, "❌ Error analyzing image. Please try again.")
		return
	}

	text := "🔍 *Image Analysis*\n\n" + analysis
	if msg.Caption != "" {
		text = fmt.Sprintf("📝 *Your caption:* %s\n\n%s", msg.Caption, text)
	}

	s.editNotice(msg.ChatID, noticeID, formatMessage(text, s.cfg.Limits.MaxMessageLength))
	s.stateSvc.RecordImageEvent(state.ImageAnalyzed)
}

func (s *Service) handleStatus(msg queue.Message) {
	snap := s.stateSvc.StatusSnapshot()

	s.reply(msg.ChatID, fmt.Sprintf(
		"🤖 *Bot Status*\n\n"+
			"✅ Status: Online\n"+
			"⏰ Uptime: %s\n"+
			"📊 Messages: %d\n"+
			"🖼️ Images Analyzed: %d\n"+
			"🎨 Images Generated: %d\n"+
			"❌ Errors: %d\n"+
			"🚀 Started: %s",
		formatUptime(snap.StartedAt),
		snap.MessagesProcessed,
		snap.ImagesAnalyzed,
		snap.ImagesGenerated,
		snap.Errors,
		snap.StartedAt.Format("2006-01-02 15:04:05")))
}

func (s *Service) handleClear(msg queue.Message) {
	s.stateSvc.ResetConversation(msg.UserID)
	s.reply(msg.ChatID, clearedReply)
}

func (s *Service) editNotice(chatID int64, messageID int, text string) {
	if err := s.platform.EditMessage(chatID, messageID, text); err != nil {
		slog.Error("Failed to edit notice", "chat_id", chatID, "error", err)
	}
}

func largestPhoto(photos []queue.Photo) queue.Photo {
	sorted := pie.SortUsing(photos, func(a, b queue.Photo) bool {
		return a.FileSize < b.FileSize
	})

	return sorted[len(sorted)-1]
}
