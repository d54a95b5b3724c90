package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/samvad-hq/position-parser/internal/logger"
)

// Completer sends one system + user prompt pair to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 8192
	DefaultTimeout   = 120 * time.Second
)

// AnthropicOptions configures the Messages API client.
type AnthropicOptions struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL    string
	MaxRetries int
}

// AnthropicCompleter implements Completer on the Anthropic Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       logger.Logger
}

// NewAnthropicCompleter builds a completer; an API key is required.
func NewAnthropicCompleter(opts AnthropicOptions, log logger.Logger) (*AnthropicCompleter, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &AnthropicCompleter{
		client:    anthropic.NewClient(reqOpts...),
		model:     opts.Model,
		maxTokens: int64(opts.MaxTokens),
		log:       logger.Ensure(log),
	}, nil
}

// Complete issues a single-turn Messages request and concatenates the text blocks of the reply.
func (c *AnthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		c.log.ErrorObj("completion request failed", "anthropic_error", err.Error())
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	c.log.InfoObj("completion received", "anthropic_usage", map[string]any{
		"model":         c.model,
		"input_tokens":  msg.Usage.InputTokens,
		"output_tokens": msg.Usage.OutputTokens,
		"stop_reason":   msg.StopReason,
	})

	if b.Len() == 0 {
		return "", errors.New("anthropic messages: response contained no text")
	}
	return b.String(), nil
}

// FailureMessage turns a completion error into a fixed client-facing message.
func FailureMessage(err error) string {
	var apiErr *anthropic.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Analysis failed: the analysis service took too long to respond. Please try again."
	case errors.As(err, &apiErr) && apiErr.StatusCode == 429:
		return "Analysis failed: the analysis service is rate limited. Please wait a moment and try again."
	case errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403):
		return "Analysis failed: the analysis service rejected the configured credentials."
	default:
		return "Analysis failed: the analysis service returned an error. Please try again later."
	}
}
