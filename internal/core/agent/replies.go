package agent

import (
	"fmt"
	"strings"

	"github.com/neilberkman/hireplan/internal/core/models"
)

// Fixed assistant replies.
const (
	Greeting = "👋 Hi there! I'm your HR assistant. I can help you plan a hiring process for your startup. " +
		"What roles are you looking to hire for?"

	NeedRolesForJobDescriptions = "I need to know which roles you're looking to hire for before I can create job descriptions. " +
		"Could you please specify the roles?"

	NeedRolesForHiringPlans = "I need to know which roles you're looking to hire for before I can create hiring plans. " +
		"Could you please specify the roles?"

	UpstreamFailureReply = "I'm sorry, I encountered an error processing your request. Please try again or start a new session."

	EmptyReply = "I'm processing your request. Could you provide more details about your hiring needs?"
)

// Defaults for roles with no extracted details.
var (
	DefaultSkills     = []string{"relevant technical skills"}
	DefaultExperience = "appropriate"
)

// DefaultTimelineWeeks is used for plans when no timeline was extracted.
const DefaultTimelineWeeks = 8

func jobDescriptionsReply(roles []string, descs map[string]string) string {
	var b strings.Builder
	b.WriteString("I've created job descriptions based on your requirements:\n\n")
	for _, role := range roles {
		fmt.Fprintf(&b, "## %s JOB DESCRIPTION\n%s\n\n", strings.ToUpper(role), descs[role])
	}
	b.WriteString("Would you like me to make any adjustments to these job descriptions or help create a hiring plan?")
	return b.String()
}

func hiringPlansReply(roles []string, plans map[string]models.Checklist) string {
	var b strings.Builder
	b.WriteString("Based on your requirements, I've created a hiring plan for each role:\n\n")
	for _, role := range roles {
		fmt.Fprintf(&b, "## %s HIRING PLAN\n```json\n%s\n```\n\n", strings.ToUpper(role), plans[role].String())
	}
	b.WriteString("Is there anything else you'd like me to help with regarding your hiring process?")
	return b.String()
}
