package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const roastSystemPrompt = "You are a comedy roast writer for a Discord server. " +
	"Write short, playful roasts that tease without being hateful. " +
	"Never mention protected characteristics. Two sentences maximum."

// RoastClient generates roast texts through an OpenAI-compatible API.
type RoastClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRoastClient creates a roast client. The timeout bounds each request.
func NewRoastClient(apiKey, model string, timeout time.Duration, logger *zap.Logger) *RoastClient {
	return &RoastClient{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		logger:  logger.Named("roast_client"),
	}
}

// newRoastClientWithConfig is used by tests to point at a fake server.
func newRoastClientWithConfig(cfg openai.ClientConfig, model string, timeout time.Duration, logger *zap.Logger) *RoastClient {
	return &RoastClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		logger:  logger.Named("roast_client"),
	}
}

// Roast generates a roast for the given display name.
func (c *RoastClient) Roast(ctx context.Context, displayName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: roastSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Roast the user %q.", displayName)},
		},
		MaxTokens:   120,
		Temperature: 0.9,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %w", ErrStatus, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrStatus)
	}

	roast := strings.TrimSpace(resp.Choices[0].Message.Content)
	if roast == "" {
		return "", fmt.Errorf("%w: empty completion", ErrStatus)
	}

	c.logger.Debug("Generated roast", zap.String("target", displayName))
	return roast, nil
}
