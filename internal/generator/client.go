package generator

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client wraps the model API behind the two operations the pipeline
// needs: a single-prompt completion and a connectivity probe. The base
// URL, key and model are fixed at construction; there is no shared
// mutable client state.
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a new model API client.
func NewClient(apiKey, baseURL, model string, logger *zap.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4TurboPreview
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// SendRequest sends a single prompt and returns the raw completion text.
func (c *Client) SendRequest(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	c.logger.Info("received model completion",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
	)

	return resp.Choices[0].Message.Content, nil
}

// ProbeConnectivity reports whether the model API answers a lightweight
// round trip. It never fails the caller; unreachable simply means false.
func (c *Client) ProbeConnectivity(ctx context.Context) bool {
	_, err := c.api.ListModels(ctx)
	if err != nil {
		c.logger.Warn("model api unreachable", zap.Error(err))
		return false
	}
	return true
}
