package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/tmc/langchaingo/llms/bedrock"
)

// BedrockConfig holds configuration for Bedrock provider
type BedrockConfig struct {
	Region          string // AWS region, defaults to us-east-1
	ModelID         string // Model ID, defaults to anthropic.claude-3-haiku-20240307-v1:0
	Profile         string // AWS profile name (optional)
	AccessKeyID     string // AWS access key ID (optional, for explicit creds)
	SecretAccessKey string // AWS secret access key (optional, for explicit creds)
	Temperature     float64
	MaxTokens       int
}

// NewBedrockProvider creates a Provider backed by AWS Bedrock.
func NewBedrockProvider(ctx context.Context, cfg BedrockConfig) (Provider, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.ModelID == "" || cfg.ModelID == DefaultConfig().Model {
		cfg.ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &errs.UpstreamError{Kind: errs.UpstreamConfig, Provider: ProviderBedrock, Err: fmt.Errorf("failed to load AWS config: %w", err)}
	}

	model, err := bedrock.New(
		bedrock.WithModel(cfg.ModelID),
		bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
	)
	if err != nil {
		return nil, &errs.UpstreamError{Kind: errs.UpstreamConfig, Provider: ProviderBedrock, Err: fmt.Errorf("failed to create Bedrock LLM: %w", err)}
	}

	return &chatModel{
		name:        ProviderBedrock,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}
