// Package artifacts renders hiring artifacts: job descriptions, staged
// hiring checklists and canned job-market data.
package artifacts

import (
	"log/slog"
	"strings"

	"github.com/cbroglie/mustache"
)

const (
	RoleFoundingEngineer = "founding engineer"
	RoleGenAIIntern      = "genai intern"
)

// DefaultEngineerTemplate is the built-in founding engineer job description.
const DefaultEngineerTemplate = `# Founding Engineer

## About Us
We're a startup focused on innovation and growth. We're looking for a founding engineer to help build our product from the ground up.

## Responsibilities
- Design and implement core system architecture
- Build and deploy initial product versions
- Work directly with founders on product strategy
- Establish engineering processes and best practices

## Requirements
- {{{experience_level}}} experience in software development
- Skills in: {{{skills}}}
- Ability to work in a fast-paced environment
- Strong problem-solving abilities
`

// DefaultInternTemplate is the built-in genai intern job description.
const DefaultInternTemplate = `# GenAI Intern

## About Us
We're innovating in the AI space and looking for talented individuals to join our team.

## Responsibilities
- Assist in developing and fine-tuning AI models
- Implement and test prompt engineering techniques
- Contribute to our AI-powered products
- Learn from experienced AI engineers

## Requirements
- {{{experience_level}}} in AI/ML
- Skills in: {{{skills}}}
- Passion for AI and its applications
- Strong programming foundation
`

// Templates holds the mustache sources for the two job description kinds.
// Empty fields use the built-in templates.
type Templates struct {
	Engineer string
	Intern   string
}

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() Templates {
	return Templates{Engineer: DefaultEngineerTemplate, Intern: DefaultInternTemplate}
}

// Generator renders artifacts with a fixed template set.
type Generator struct {
	templates Templates
	logger    *slog.Logger
}

// NewGenerator creates a generator. A nil logger discards output.
func NewGenerator(t Templates, logger *slog.Logger) *Generator {
	if t.Engineer == "" {
		t.Engineer = DefaultEngineerTemplate
	}
	if t.Intern == "" {
		t.Intern = DefaultInternTemplate
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{templates: t, logger: logger}
}

var defaultGenerator = NewGenerator(DefaultTemplates(), nil)

// RenderJobDescription renders with the built-in templates.
func RenderJobDescription(role string, skills []string, experience string) string {
	return defaultGenerator.RenderJobDescription(role, skills, experience)
}

// TemplateKey returns the template a role renders with. Roles that match
// neither kind use the intern template; known reports whether the role
// matched one explicitly.
func TemplateKey(role string) (key string, known bool) {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "engineer") || strings.Contains(r, "found"):
		return RoleFoundingEngineer, true
	case strings.Contains(r, "intern") || strings.Contains(r, "genai"):
		return RoleGenAIIntern, true
	default:
		return RoleGenAIIntern, false
	}
}

// RenderJobDescription renders the job description for role. It never
// fails: a broken override template falls back to the built-in one.
func (g *Generator) RenderJobDescription(role string, skills []string, experience string) string {
	key, known := TemplateKey(role)
	if !known {
		g.logger.Debug("no job description template for role, using intern template", "role", role)
	}

	source, builtin := g.templates.Intern, DefaultInternTemplate
	if key == RoleFoundingEngineer {
		source, builtin = g.templates.Engineer, DefaultEngineerTemplate
	}

	data := map[string]any{
		"role":             role,
		"experience_level": experience,
		"skills":           strings.Join(skills, ", "),
	}

	out, err := mustache.Render(source, data)
	if err == nil {
		return out
	}
	g.logger.Warn("job description template failed, using built-in", "role", role, "error", err)
	out, err = mustache.Render(builtin, data)
	if err != nil {
		// Built-in templates always parse.
		return builtin
	}
	return out
}
