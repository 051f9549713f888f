package llm

import (
	"context"
	"strings"
)

// DefaultStaticReply is what the offline provider answers.
const DefaultStaticReply = "I'm running without a language model right now. Tell me which roles you're hiring for, " +
	"then ask me to \"create job description\" or build a \"hiring plan\"."

// StaticProvider answers every request with a fixed reply. It backs offline
// use and demos.
type StaticProvider struct {
	reply string
}

// NewStaticProvider creates a static provider. An empty reply uses
// DefaultStaticReply.
func NewStaticProvider(reply string) *StaticProvider {
	if strings.TrimSpace(reply) == "" {
		reply = DefaultStaticReply
	}
	return &StaticProvider{reply: reply}
}

func (p *StaticProvider) Name() string { return ProviderStatic }

func (p *StaticProvider) Complete(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify(ProviderStatic, err)
	}
	return p.reply, nil
}
