package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// defaultOpenAIModel is used when no model is configured. A plain string
// rather than a library constant: the pinned go-openai version predates
// the model's constant, and compatible endpoints accept arbitrary names.
const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient talks to OpenAI or any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
// baseURL may be empty for the hosted API.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends a single-turn chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, stop ...string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stop: stop,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 && apiErr.HTTPStatusCode < 500 {
			return "", fmt.Errorf("openai: %w", err)
		}
		// Transport failures and 5xx responses count as unavailable.
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping issues a minimal request to verify connectivity.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	_, err := c.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
