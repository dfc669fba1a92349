package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	Telegram Telegram `yaml:"telegram"`
	Gemini   Gemini   `yaml:"gemini"`
	Limits   Limits   `yaml:"limits"`
	Status   Status   `yaml:"status"`
}

type Telegram struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789" validate:"required"`
	// Telegram user ID allowed to use /admin and /stats
	AdminID int64 `yaml:"admin_id" example:"123456789" validate:"required"`
	// Public bot username, used in the status endpoints
	Username string `yaml:"username" example:"GeminiAIBot"`
}

type Gemini struct {
	// Google AI Studio API key
	APIKey string `yaml:"api_key" example:"AIzaSyAbc123456789DEFghi012JKLmno345PQRstu" validate:"required"`
	// Model for text conversations
	TextModel string `yaml:"text_model" example:"gemini-2.5-flash"`
	// Model for image analysis
	VisionModel string `yaml:"vision_model" example:"gemini-2.5-pro"`
	// Model for image generation
	ImageModel string `yaml:"image_model" example:"gemini-2.0-flash-preview-image-generation"`
}

type Limits struct {
	// Sliding rate-limit window in seconds
	RateWindowSeconds int `yaml:"rate_window_seconds" example:"60"`
	// Max admitted messages per user within the window
	RateMaxMessages int `yaml:"rate_max_messages" example:"10"`
	// Max conversation turns kept per user
	HistorySize int `yaml:"history_size" example:"20"`
	// Max outgoing Telegram message length
	MaxMessageLength int `yaml:"max_message_length" example:"4096" validate:"omitempty,min=100"`
	// Max accepted photo size in megabytes
	MaxImageSizeMB int `yaml:"max_image_size_mb" example:"20"`
}

type Status struct {
	// Port for the status HTTP server
	Port int `yaml:"port" example:"5000"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Gemini.TextModel == "" {
		result.Gemini.TextModel = "gemini-2.5-flash"
	}
	if result.Gemini.VisionModel == "" {
		result.Gemini.VisionModel = "gemini-2.5-pro"
	}
	if result.Gemini.ImageModel == "" {
		result.Gemini.ImageModel = "gemini-2.0-flash-preview-image-generation"
	}
	if result.Telegram.Username == "" {
		result.Telegram.Username = "GeminiAIBot"
	}
	if result.Limits.RateWindowSeconds <= 0 {
		result.Limits.RateWindowSeconds = 60
	}
	if result.Limits.RateMaxMessages <= 0 {
		result.Limits.RateMaxMessages = 10
	}
	if result.Limits.HistorySize <= 0 {
		result.Limits.HistorySize = 20
	}
	if result.Limits.MaxMessageLength <= 0 {
		result.Limits.MaxMessageLength = 4096
	}
	if result.Limits.MaxImageSizeMB <= 0 {
		result.Limits.MaxImageSizeMB = 20
	}
	if result.Status.Port <= 0 {
		result.Status.Port = 5000
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
