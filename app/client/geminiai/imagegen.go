package geminiai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// langchaingo has no surface for response modalities, so image generation
// calls the generateContent REST endpoint directly.

const generateContentURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text,omitempty"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateImage produces an image for the prompt, returning the image bytes
// and any accompanying text description.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	payload := generateRequest{
		Contents: []requestContent{
			{Parts: []requestPart{{Text: "Generate an image: " + prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", oops.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(generateContentURL, c.cfg.Gemini.ImageModel)

	ctx, cancel := context.WithTimeout(ctx, maxRequestDuration)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", oops.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.Gemini.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", oops.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", oops.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", oops.Errorf("image generation returned %s: %s", resp.Status, truncateBody(respBody))
	}

	var parsed generateResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return nil, "", oops.Errorf("failed to parse response: %w", err)
	}

	if len(parsed.Candidates) == 0 {
		return nil, "", oops.Errorf("no image candidates returned")
	}

	var (
		imageData   []byte
		description strings.Builder
	)

	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.Text != "" {
			description.WriteString(part.Text)
		}

		if part.InlineData != nil && part.InlineData.Data != "" {
			imageData, err = base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, "", oops.Errorf("failed to decode image data: %w", err)
			}
		}
	}

	if imageData == nil {
		return nil, "", oops.Errorf("no image data received")
	}

	return imageData, strings.TrimSpace(description.String()), nil
}

func truncateBody(body []byte) string {
	const limit = 512

	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
