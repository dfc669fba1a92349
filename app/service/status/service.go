package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gembot/app/config"
	"gembot/app/service/state"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Service is the read-only HTTP status surface. It only ever reads snapshots
// from the state coordinator; no endpoint mutates anything.
type Service struct {
	cfg      *config.Config
	stateSvc *state.Service
	app      *fiber.App
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:      do.MustInvoke[*config.Config](di),
		stateSvc: do.MustInvoke[*state.Service](di),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.setupRoutes()

	return s, nil
}

func (s *Service) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/status", s.handleStatus)
	s.app.Get("/metrics", s.handleMetrics)
	s.app.Get("/api/info", s.handleInfo)
	s.app.Get("/api/stats/summary", s.handleSummary)

	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":               "Not found",
			"message":             "The requested endpoint was not found.",
			"available_endpoints": []string{"/health", "/status", "/metrics", "/api/info", "/api/stats/summary"},
		})
	})
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": fiber.Map{
			"bot":          "running",
			"gemini_api":   configuredFlag(s.cfg.Gemini.APIKey != ""),
			"telegram_api": configuredFlag(s.cfg.Telegram.Token != ""),
		},
	})
}

type statistics struct {
	MessagesProcessed uint64 `json:"messages_processed"`
	ImagesAnalyzed    uint64 `json:"images_analyzed"`
	ImagesGenerated   uint64 `json:"images_generated"`
	Errors            uint64 `json:"errors"`
	ActiveUsers       int    `json:"active_users"`
}

func (s *Service) handleStatus(c *fiber.Ctx) error {
	snap := s.stateSvc.StatusSnapshot()

	return c.JSON(fiber.Map{
		"status":           "online",
		"uptime_seconds":   snap.UptimeSeconds,
		"uptime_formatted": formatUptime(snap.StartedAt),
		"timestamp":        time.Now().Format(time.RFC3339),
		"bot_info": fiber.Map{
			"bot_username":       s.cfg.Telegram.Username,
			"admin_id":           s.cfg.Telegram.AdminID,
			"max_message_length": s.cfg.Limits.MaxMessageLength,
			"history_size":       s.cfg.Limits.HistorySize,
			"rate_limit": fiber.Map{
				"window_seconds": s.cfg.Limits.RateWindowSeconds,
				"max_messages":   s.cfg.Limits.RateMaxMessages,
			},
		},
		"statistics": statistics{
			MessagesProcessed: snap.MessagesProcessed,
			ImagesAnalyzed:    snap.ImagesAnalyzed,
			ImagesGenerated:   snap.ImagesGenerated,
			Errors:            snap.Errors,
			ActiveUsers:       snap.ActiveUsers,
		},
	})
}

func (s *Service) handleMetrics(c *fiber.Ctx) error {
	snap := s.stateSvc.StatusSnapshot()

	return c.JSON(fiber.Map{
		"uptime_seconds":         snap.UptimeSeconds,
		"messages_total":         snap.MessagesProcessed,
		"images_analyzed_total":  snap.ImagesAnalyzed,
		"images_generated_total": snap.ImagesGenerated,
		"errors_total":           snap.Errors,
		"active_users":           snap.ActiveUsers,
		"context_size_total":     snap.ContextSizeTotal,
	})
}

func (s *Service) handleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"api_version": "1.0.0",
		"bot_name":    s.cfg.Telegram.Username,
		"description": "Telegram bot with Gemini AI integration",
		"features": []string{
			"AI-powered conversations",
			"Image generation with Gemini",
			"Image analysis and recognition",
			"Real-time status monitoring",
			"Rate limiting",
		},
		"endpoints": fiber.Map{
			"health":   "/health",
			"status":   "/status",
			"metrics":  "/metrics",
			"api_info": "/api/info",
			"summary":  "/api/stats/summary",
		},
	})
}

func (s *Service) handleSummary(c *fiber.Ctx) error {
	snap := s.stateSvc.StatusSnapshot()

	errorRate := 0.0
	if snap.MessagesProcessed > 0 {
		errorRate = float64(snap.Errors) / float64(snap.MessagesProcessed) * 100
	}

	return c.JSON(fiber.Map{
		"online":                 true,
		"uptime_hours":           float64(snap.UptimeSeconds) / 3600,
		"total_messages":         snap.MessagesProcessed,
		"total_images_processed": snap.ImagesAnalyzed + snap.ImagesGenerated,
		"active_users":           snap.ActiveUsers,
		"error_rate":             errorRate,
		"last_updated":           time.Now().Format(time.RFC3339),
	})
}

func (s *Service) Run(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.cfg.Status.Port)

	slog.Info("Starting status server", "addr", addr)

	go func() {
		<-ctx.Done()

		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			slog.Warn("Status server shutdown failed", "error", err)
		}
	}()

	if err := s.app.Listen(addr); err != nil {
		slog.Error("Status server stopped", "error", err)
	}
}

func (s *Service) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

func configuredFlag(configured bool) string {
	if configured {
		return "configured"
	}

	return "missing"
}

func formatUptime(start time.Time) string {
	uptime := time.Since(start)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60

	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}
