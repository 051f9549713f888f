package llm

import (
	"fmt"

	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAIProvider creates a Provider backed by the OpenAI chat API.
func NewOpenAIProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, &errs.UpstreamError{Kind: errs.UpstreamConfig, Provider: ProviderOpenAI, Detail: "OPENAI_API_KEY is not set"}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, &errs.UpstreamError{Kind: errs.UpstreamConfig, Provider: ProviderOpenAI, Err: fmt.Errorf("failed to create OpenAI LLM: %w", err)}
	}

	return &chatModel{
		name:        ProviderOpenAI,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}
