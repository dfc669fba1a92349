package bot

import (
	"fmt"

	"gembot/app/service/queue"
)

func (s *Service) handleAdmin(msg queue.Message) {
	if !s.isAdmin(msg.UserID) {
		s.reply(msg.ChatID, accessDeniedReply)
		return
	}

	s.reply(msg.ChatID,
		"🔧 *Admin Control Panel*\n\n"+
			"• /stats - Detailed statistics\n"+
			"• /status - Public status\n"+
			"• /clear - Clear your own conversation\n\n"+
			fmt.Sprintf("Status server: http://localhost:%d/status", s.cfg.Status.Port))
}

func (s *Service) handleStats(msg queue.Message) {
	if !s.isAdmin(msg.UserID) {
		s.reply(msg.ChatID, accessDeniedReply)
		return
	}

	snap := s.stateSvc.StatusSnapshot()

	errorRate := 0.0
	if snap.MessagesProcessed > 0 {
		errorRate = float64(snap.Errors) / float64(snap.MessagesProcessed) * 100
	}

	avgPerUser := 0.0
	if snap.ActiveUsers > 0 {
		avgPerUser = float64(snap.MessagesProcessed) / float64(snap.ActiveUsers)
	}

	s.reply(msg.ChatID, fmt.Sprintf(
		"📊 *Detailed Bot Statistics*\n\n"+
			"⏰ *Uptime:* %s\n"+
			"🚀 *Started:* %s\n\n"+
			"📈 *Usage Statistics:*\n"+
			"• Messages Processed: %d\n"+
			"• Images Analyzed: %d\n"+
			"• Images Generated: %d\n"+
			"• Total Errors: %d\n\n"+
			"👥 *User Statistics:*\n"+
			"• Active Users: %d\n"+
			"• Total Context Turns: %d\n\n"+
			"💾 *Performance:*\n"+
			"• Error Rate: %.2f%%\n"+
			"• Avg Messages/User: %.1f",
		formatUptime(snap.StartedAt),
		snap.StartedAt.Format("2006-01-02 15:04:05"),
		snap.MessagesProcessed,
		snap.ImagesAnalyzed,
		snap.ImagesGenerated,
		snap.Errors,
		snap.ActiveUsers,
		snap.ContextSizeTotal,
		errorRate,
		avgPerUser))
}
