package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/krishisetu/krishisetu/pkg/config"
)

// Advisor answers farming questions through an OpenAI-compatible chat API.
type Advisor interface {
	Chat(ctx context.Context, question, language string) (string, error)
	Vision(ctx context.Context, question, imageDataURL, language string) (string, error)
}

type client struct {
	http        *resty.Client
	model       string
	visionModel string
}

func NewClient(cfg config.AIConfig) Advisor {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(60 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)

	return &client{
		http:        http,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type imagePart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

func systemPrompt(language string) string {
	lang := "Hindi"
	if strings.EqualFold(language, "en") {
		lang = "English"
	}
	return fmt.Sprintf(
		"You are an agricultural advisor for small Indian farmers. "+
			"Answer in %s, in short practical steps. Mention dosages in local units "+
			"(acre, quintal, litre) and flag anything that needs an expert visit.", lang)
}

func (c *client) Chat(ctx context.Context, question, language string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(language)},
			{Role: "user", Content: question},
		},
		MaxTokens: 1024,
	}
	return c.complete(ctx, req)
}

func (c *client) Vision(ctx context.Context, question, imageDataURL, language string) (string, error) {
	img := imagePart{Type: "image_url"}
	img.ImageURL = &struct {
		URL string `json:"url"`
	}{URL: imageDataURL}

	req := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(language)},
			{Role: "user", Content: []imagePart{
				{Type: "text", Text: question},
				img,
			}},
		},
		MaxTokens: 1024,
	}
	return c.complete(ctx, req)
}

func (c *client) complete(ctx context.Context, req chatRequest) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("ai request: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return "", fmt.Errorf("ai request: %s", out.Error.Message)
		}
		return "", fmt.Errorf("ai request: status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("ai request: empty response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
