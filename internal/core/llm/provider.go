// Package llm is the boundary to the language-model completion service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/tmc/langchaingo/llms"
)

// Provider names accepted by New.
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
	ProviderStatic  = "static"
)

// Request is one completion: the system prompt, the prior conversation and
// the new user text.
type Request struct {
	System  string
	History []models.Turn
	Input   string
}

// Provider is the interface for completion backends. Complete returns the
// assistant text, or an *errs.UpstreamError.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the provider name (e.g., "bedrock", "openai")
	Name() string
}

// Config selects and tunes a provider.
type Config struct {
	Provider    string        `toml:"provider"`
	Model       string        `toml:"model"`
	Temperature float64       `toml:"temperature"`
	MaxTokens   int           `toml:"max_tokens"`
	Timeout     time.Duration `toml:"timeout"` // "30s"
	Retries     int           `toml:"retries"`

	// OpenAI
	APIKey  string `toml:"-"`
	BaseURL string `toml:"base_url"`

	// Bedrock
	Region          string `toml:"region"`
	Profile         string `toml:"profile"`
	AccessKeyID     string `toml:"-"`
	SecretAccessKey string `toml:"-"`

	// Static
	StaticReply string `toml:"static_reply"`
}

// DefaultTemperature is used when no temperature is configured.
const DefaultTemperature = 0.5

// DefaultConfig returns the defaults used when no configuration is given.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o",
		Temperature: DefaultTemperature,
		MaxTokens:   1024,
		Timeout:     60 * time.Second,
		Retries:     2,
	}
}

// New builds the configured provider wrapped with timeout and retry.
func New(ctx context.Context, cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "", ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg)
	case ProviderBedrock:
		p, err = NewBedrockProvider(ctx, BedrockConfig{
			Region:          cfg.Region,
			ModelID:         cfg.Model,
			Profile:         cfg.Profile,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Temperature:     cfg.Temperature,
			MaxTokens:       cfg.MaxTokens,
		})
	case ProviderStatic:
		p = NewStaticProvider(cfg.StaticReply)
	default:
		return nil, &errs.UpstreamError{Kind: errs.UpstreamConfig, Provider: cfg.Provider, Detail: "unknown provider"}
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(p, RetryPolicy{Attempts: cfg.Retries + 1, Timeout: cfg.Timeout}), nil
}

// chatModel adapts a langchaingo model to Provider.
type chatModel struct {
	name        string
	model       llms.Model
	temperature float64
	maxTokens   int
}

func (c *chatModel) Name() string { return c.name }

func (c *chatModel) Complete(ctx context.Context, req Request) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}

	resp, err := c.model.GenerateContent(ctx, BuildMessages(req), opts...)
	if err != nil {
		return "", classify(c.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", &errs.UpstreamError{Kind: errs.UpstreamEmpty, Provider: c.name, Detail: "no content in response"}
	}
	return resp.Choices[0].Content, nil
}

// BuildMessages converts a request to the langchaingo message list: system
// prompt, then history, then the new input.
func BuildMessages(req Request) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, turn := range req.History {
		kind := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			kind = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(kind, turn.Content))
	}
	return append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, req.Input))
}

// classify maps a backend error to an UpstreamError.
func classify(provider string, err error) error {
	var ue *errs.UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	kind := errs.UpstreamUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = errs.UpstreamTimeout
	}
	return &errs.UpstreamError{Kind: kind, Provider: provider, Err: fmt.Errorf("%s generation failed: %w", provider, err)}
}
