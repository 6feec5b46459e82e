package provider

import (
	"context"
	"time"

	"fx-sentiment/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLMClient abstracts the OpenAI-compatible chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

// NewOpenAIClient builds a client for any OpenAI-compatible endpoint (x.ai by default).
// SDK-level retries are disabled: one call must be exactly one upstream attempt.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) LLMClient {
	if apiKey == "" {
		return missingCredentialsClient{}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &openaiClient{client: openai.NewClient(opts...)}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

type missingCredentialsClient struct{}

func (missingCredentialsClient) CreateChatCompletion(context.Context, openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return nil, domain.ErrMissingCredentials
}
