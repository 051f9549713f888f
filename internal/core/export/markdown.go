// Package export renders sessions as markdown documents.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neilberkman/hireplan/internal/core/models"
)

const timeLayout = "Jan 02, 2006 15:04:05"

// Markdown renders the session: metadata, hiring needs, the conversation,
// then job descriptions and checklists per role.
func Markdown(sess *models.Session) string {
	var b strings.Builder

	b.WriteString("# Hiring session\n\n")
	fmt.Fprintf(&b, "**Session ID:** `%s`  \n", sess.ID)
	fmt.Fprintf(&b, "**Created:** %s  \n", formatTime(sess.CreatedAt.Time))
	fmt.Fprintf(&b, "**Updated:** %s  \n", formatTime(sess.LastActivity().Time))
	fmt.Fprintf(&b, "**Messages:** %d\n\n", len(sess.History))

	needs := sess.HiringNeeds
	if len(needs.Roles) > 0 {
		b.WriteString("## Hiring needs\n\n")
		for _, role := range needs.Roles {
			fmt.Fprintf(&b, "### %s\n\n", role)
			if skills := needs.Skills[role]; len(skills) > 0 {
				fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(skills, ", "))
			}
			if exp := needs.Experience[role]; exp != "" {
				fmt.Fprintf(&b, "- Experience: %s\n", exp)
			}
			if budget := needs.Budget[role]; budget != "" {
				fmt.Fprintf(&b, "- Budget: %s\n", budget)
			}
			b.WriteString("\n")
		}
		if needs.Timeline != nil {
			fmt.Fprintf(&b, "Timeline: %d weeks\n\n", *needs.Timeline)
		}
	}

	b.WriteString("---\n\n")
	for _, turn := range sess.History {
		fmt.Fprintf(&b, "**%s** _%s_\n\n", strings.ToUpper(string(turn.Role)), formatTime(turn.Timestamp.Time))
		if turn.Content != "" {
			b.WriteString(turn.Content)
			b.WriteString("\n\n")
		}
		b.WriteString("---\n\n")
	}

	if roles := Roles(sess, sess.JobDescriptions); len(roles) > 0 {
		b.WriteString("## Job descriptions\n\n")
		for _, role := range roles {
			b.WriteString(strings.TrimSpace(sess.JobDescriptions[role]))
			b.WriteString("\n\n")
		}
	}

	if roles := Roles(sess, sess.HiringChecklists); len(roles) > 0 {
		b.WriteString("## Hiring checklists\n\n")
		for _, role := range roles {
			fmt.Fprintf(&b, "### %s\n\n", role)
			for _, stage := range sess.HiringChecklists[role].Stages() {
				fmt.Fprintf(&b, "**%s**\n\n", stage.Name)
				for _, task := range stage.Tasks {
					fmt.Fprintf(&b, "- [ ] %s (%s)\n", task.Task, task.Timeframe)
				}
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// Roles returns the keys of m: roles in requirement order first, then any
// others sorted.
func Roles[V any](sess *models.Session, m map[string]V) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, role := range sess.HiringNeeds.Roles {
		if _, ok := m[role]; ok {
			out = append(out, role)
			seen[role] = true
		}
	}
	var rest []string
	for role := range m {
		if !seen[role] {
			rest = append(rest, role)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(timeLayout)
}
