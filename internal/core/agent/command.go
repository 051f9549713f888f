package agent

import "strings"

// Command is what a user utterance asks the assistant to do.
type Command int

const (
	FreeformChat Command = iota
	GenerateJobDescription
	GenerateHiringPlan
)

func (c Command) String() string {
	switch c {
	case GenerateJobDescription:
		return "job_description"
	case GenerateHiringPlan:
		return "hiring_plan"
	default:
		return "chat"
	}
}

// Classify maps an utterance to a Command. Job description phrases win over
// hiring plan phrases.
func Classify(text string) Command {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "generate job description"), strings.Contains(t, "create job description"):
		return GenerateJobDescription
	case strings.Contains(t, "hiring plan"), strings.Contains(t, "checklist"):
		return GenerateHiringPlan
	default:
		return FreeformChat
	}
}

// Tool names tracked in analytics.
const (
	ToolSearchJobMarket       = "search_job_market"
	ToolDraftJobDescription   = "draft_job_description"
	ToolCreateHiringChecklist = "create_hiring_checklist"
)

// Tools lists the tracked tool names in reporting order.
var Tools = []string{ToolSearchJobMarket, ToolDraftJobDescription, ToolCreateHiringChecklist}

// mentionedTools returns the tool names that appear in text.
func mentionedTools(text string) []string {
	var found []string
	for _, tool := range Tools {
		if strings.Contains(text, tool) {
			found = append(found, tool)
		}
	}
	return found
}

// requestedRoles returns the canonical roles an utterance asks about, for
// role-request analytics.
func requestedRoles(text string) []string {
	t := strings.ToLower(text)
	var roles []string
	if strings.Contains(t, "engineer") {
		roles = append(roles, "founding engineer")
	}
	if strings.Contains(t, "intern") || strings.Contains(t, "genai") {
		roles = append(roles, "genai intern")
	}
	return roles
}
