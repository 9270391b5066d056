// Package genai talks to a generative text model through an OpenAI-compatible
// chat completions endpoint. Gemini exposes one, which is the default target.
package genai

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	gobreaker "github.com/sony/gobreaker/v2"

	"booksearch/internal/platform/breaker"
)

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("genai: empty response")

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type Client struct {
	client openai.Client
	model  string
	cb     *gobreaker.CircuitBreaker[string]
}

// NewClient builds a client. The SDK's own retries are disabled: a failed
// call is reported once and the caller decides what to do.
func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		cb:     breaker.New[string]("genai", breaker.Settings{}),
	}
}

// Generate sends prompt as a single user message and returns the raw text of
// the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.cb.Execute(func() (string, error) {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(0),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	})
}
