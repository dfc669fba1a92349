package geminiai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gembot/app/config"
	"gembot/app/service/state"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const (
	maxRequestDuration = 30 * time.Second
	maxContextTurns    = 10
	maxReplyTokens     = 2048

	defaultAnalysisPrompt = "Analyze this image in detail. Describe what you see, including objects, " +
		"people, activities, colors, composition, and any notable aspects. " +
		"Provide a comprehensive analysis."
)

// Client talks to Google Gemini: multi-turn chat and image analysis go through
// langchaingo, image generation through the REST endpoint (see imagegen.go).
type Client struct {
	cfg  *config.Config
	llm  *googleai.GoogleAI
	http *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	llm, err := googleai.New(appCtx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.TextModel),
	)
	if err != nil {
		return nil, oops.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		cfg: cfg,
		llm: llm,
		http: &http.Client{
			Timeout: maxRequestDuration,
		},
	}, nil
}

// Chat generates a reply for the conversation. Only the most recent turns are
// sent; the last turn is expected to be the pending user message.
func (c *Client) Chat(ctx context.Context, turns []state.Turn) (string, error) {
	if len(turns) > maxContextTurns {
		turns = turns[len(turns)-maxContextTurns:]
	}

	messages := make([]llms.MessageContent, 0, len(turns))
	for _, turn := range turns {
		role := llms.ChatMessageTypeHuman
		if turn.Role == state.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}

		messages = append(messages, llms.TextParts(role, turn.Text))
	}

	ctx, cancel := context.WithTimeout(ctx, maxRequestDuration)
	defer cancel()

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithModel(c.cfg.Gemini.TextModel),
		llms.WithMaxTokens(maxReplyTokens),
	)
	if err != nil {
		return "", oops.Errorf("failed to generate reply: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", oops.Errorf("no reply candidates returned")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// AnalyzeImage describes the image with the vision model. An empty prompt
// falls back to a detailed default analysis request.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	if prompt == "" {
		prompt = defaultAnalysisPrompt
	}

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/jpeg", image),
				llms.TextPart(prompt),
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, maxRequestDuration)
	defer cancel()

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithModel(c.cfg.Gemini.VisionModel),
		llms.WithMaxTokens(maxReplyTokens),
	)
	if err != nil {
		return "", oops.Errorf("failed to analyze image: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", oops.Errorf("no analysis candidates returned")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
