package upstream

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-sonnet-4-5"

	// DefaultMaxTokens bounds the length of each completion.
	DefaultMaxTokens = 4096
)

// ErrMissingAPIKey indicates AnthropicConfig.APIKey is empty.
var ErrMissingAPIKey = errors.New("upstream: anthropic api key is required")

// AnthropicConfig configures the Anthropic adapter.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
	// RequestTimeout bounds a single HTTP attempt. The pipeline applies its
	// own deadline on top of this.
	RequestTimeout time.Duration
}

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicGenerator creates an adapter. SDK retries are disabled.
func NewAnthropicGenerator(cfg AnthropicConfig) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}

	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Invoke sends prompt as a single user message and concatenates the text
// blocks of the reply.
func (g *AnthropicGenerator) Invoke(ctx context.Context, prompt string) (*Response, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, classifyAnthropic(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	resp := &Response{Text: text.String()}
	if total := msg.Usage.InputTokens + msg.Usage.OutputTokens; total > 0 {
		tokens := int(total)
		resp.TokensUsed = &tokens
	}
	return resp, nil
}

// Model returns the configured model name.
func (g *AnthropicGenerator) Model() string {
	return string(g.model)
}

func classifyAnthropic(err error) *Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &Error{
			Kind:       KindForStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}
	return Classify(err)
}

// Ensure AnthropicGenerator implements Generator
var _ Generator = (*AnthropicGenerator)(nil)
