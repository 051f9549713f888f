package llm

import (
	"fmt"
	"strings"

	"github.com/neilberkman/hireplan/internal/core/models"
)

// SystemPrompt is the default system prompt for the hiring assistant.
const SystemPrompt = `You are an expert HR assistant for startups, specializing in helping plan hiring processes.
Your goal is to help HR professionals and startup founders plan effective hiring processes for various roles.

You should:
1. Ask clarifying questions about their hiring needs (budget, skills, timeline, etc.)
2. Suggest appropriate job descriptions based on their requirements
3. Create hiring checklists and plans
4. Present results in a structured and useful format

Be helpful, concise, and focused on providing actionable hiring guidance.
`

// BuildContextPrompt appends the known requirements to the system prompt so
// the model does not ask for details already given.
func BuildContextPrompt(system string, req models.Requirements) string {
	if len(req.Roles) == 0 {
		return system
	}

	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\nKnown hiring requirements so far:\n")
	for _, role := range req.Roles {
		fmt.Fprintf(&b, "- Role: %s", role)
		if skills := req.Skills[role]; len(skills) > 0 {
			fmt.Fprintf(&b, "; skills: %s", strings.Join(skills, ", "))
		}
		if exp := req.Experience[role]; exp != "" {
			fmt.Fprintf(&b, "; experience: %s", exp)
		}
		if budget := req.Budget[role]; budget != "" {
			fmt.Fprintf(&b, "; budget: %s", budget)
		}
		b.WriteString("\n")
	}
	if req.Timeline != nil {
		fmt.Fprintf(&b, "- Timeline: %d weeks\n", *req.Timeline)
	}
	return b.String()
}
