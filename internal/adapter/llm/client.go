package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/observability"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client sends chat completions to an OpenAI-compatible endpoint such as Groq.
type Client struct {
	client  *openai.Client
	model   string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a chat completion client against baseURL.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	logger.Info("llm client initialized", "base_url", baseURL, "model", model)
	return &Client{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		metrics: metrics,
		logger:  logger,
	}
}

// Complete returns the first choice for a system + user prompt pair.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: maxTokens,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	c.metrics.UpstreamLatency.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	c.logger.Debug("chat completion received", "model", c.model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
