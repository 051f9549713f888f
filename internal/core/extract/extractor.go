// Package extract infers hiring requirements from conversation text with
// fixed keyword rules.
package extract

import (
	"slices"
	"strings"

	"github.com/neilberkman/hireplan/internal/core/models"
)

// RoleRule maps trigger keywords to a canonical role and its default details.
type RoleRule struct {
	Role       string   `toml:"role"`
	Keywords   []string `toml:"keywords"`
	Skills     []string `toml:"skills"`
	Experience string   `toml:"experience"`
	Budget     string   `toml:"budget"`
}

// Defaults holds the rule set. The built-in value comes from DefaultRules.
type Defaults struct {
	Roles              []RoleRule `toml:"roles"`
	TimelineWeeks      int        `toml:"timeline_weeks"`
	SkillKeywords      []string   `toml:"skill_keywords"`
	ExperienceKeywords []string   `toml:"experience_keywords"`
	TimelineKeywords   []string   `toml:"timeline_keywords"`
	BudgetKeywords     []string   `toml:"budget_keywords"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Defaults {
	return Defaults{
		Roles: []RoleRule{
			{
				Role:       "founding engineer",
				Keywords:   []string{"founding engineer", "engineer"},
				Skills:     []string{"full-stack development", "system architecture", "devops"},
				Experience: "3-5 years",
				Budget:     "$120,000-$150,000",
			},
			{
				Role:       "genai intern",
				Keywords:   []string{"genai intern", "intern"},
				Skills:     []string{"python", "ml/ai fundamentals", "langchain/langgraph"},
				Experience: "entry-level",
				Budget:     "$30-40/hour",
			},
		},
		TimelineWeeks:      8,
		SkillKeywords:      []string{"skill"},
		ExperienceKeywords: []string{"experience", "year"},
		TimelineKeywords:   []string{"timeline", "week"},
		BudgetKeywords:     []string{"budget", "$", "salary"},
	}
}

// Rule returns the rule for role.
func (d Defaults) Rule(role string) (RoleRule, bool) {
	for _, r := range d.Roles {
		if r.Role == role {
			return r, true
		}
	}
	return RoleRule{}, false
}

// Extractor applies a rule set.
type Extractor struct {
	rules Defaults
}

// New creates an extractor. Zero-valued parts of rules fall back to the
// built-in rule set.
func New(rules Defaults) *Extractor {
	def := DefaultRules()
	if len(rules.Roles) == 0 {
		rules.Roles = def.Roles
	}
	if rules.TimelineWeeks <= 0 {
		rules.TimelineWeeks = def.TimelineWeeks
	}
	if len(rules.SkillKeywords) == 0 {
		rules.SkillKeywords = def.SkillKeywords
	}
	if len(rules.ExperienceKeywords) == 0 {
		rules.ExperienceKeywords = def.ExperienceKeywords
	}
	if len(rules.TimelineKeywords) == 0 {
		rules.TimelineKeywords = def.TimelineKeywords
	}
	if len(rules.BudgetKeywords) == 0 {
		rules.BudgetKeywords = def.BudgetKeywords
	}
	return &Extractor{rules: rules}
}

// Extract returns current updated with everything the rules find in the
// combined user and assistant text. Information is only ever added, except
// the timeline, which is reset to the default whenever a timeline keyword
// appears. current is not modified.
func (e *Extractor) Extract(current models.Requirements, userText, assistantText string) models.Requirements {
	req := current.Clone()
	text := strings.ToLower(userText + " " + assistantText)

	for _, rule := range e.rules.Roles {
		if containsAny(text, rule.Keywords) {
			req.AddRole(rule.Role)
		}
	}

	if containsAny(text, e.rules.SkillKeywords) {
		e.fill(req.Roles, func(rule RoleRule) {
			if _, ok := req.Skills[rule.Role]; !ok && len(rule.Skills) > 0 {
				req.Skills[rule.Role] = slices.Clone(rule.Skills)
			}
		})
	}

	if containsAny(text, e.rules.ExperienceKeywords) {
		e.fill(req.Roles, func(rule RoleRule) {
			if _, ok := req.Experience[rule.Role]; !ok && rule.Experience != "" {
				req.Experience[rule.Role] = rule.Experience
			}
		})
	}

	if containsAny(text, e.rules.TimelineKeywords) {
		weeks := e.rules.TimelineWeeks
		req.Timeline = &weeks
	}

	if containsAny(text, e.rules.BudgetKeywords) {
		e.fill(req.Roles, func(rule RoleRule) {
			if _, ok := req.Budget[rule.Role]; !ok && rule.Budget != "" {
				req.Budget[rule.Role] = rule.Budget
			}
		})
	}

	return req
}

// fill calls fn with the rule of every listed role that has one.
func (e *Extractor) fill(roles []string, fn func(RoleRule)) {
	for _, role := range roles {
		if rule, ok := e.rules.Rule(role); ok {
			fn(rule)
		}
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
