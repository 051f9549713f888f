package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/neilberkman/hireplan/internal/core/models"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Hiring planner") + "  " + timestampStyle.Render("session "+m.sess.ID) + "\n")
	b.WriteString(m.viewport.View() + "\n")

	if m.waiting {
		b.WriteString(m.spinner.View() + " Thinking...\n")
	} else {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(inputBorderStyle.Render(m.input.View()) + "\n")
	b.WriteString(helpStyle.Render("enter send • ctrl+y copy last reply • pgup/pgdown scroll • esc quit"))
	return b.String()
}

func renderConversation(lines []line, width int) string {
	wrap := width - 2
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		label := assistantStyle.Render("Assistant")
		if l.role == models.RoleUser {
			label = userStyle.Render("You")
		}
		b.WriteString(label)
		if !l.at.IsZero() {
			b.WriteString(" " + timestampStyle.Render(formatClock(l.at)))
		}
		b.WriteString("\n")
		b.WriteString(wordwrap.String(l.text, wrap))
		b.WriteString("\n")
	}
	return b.String()
}

func formatClock(t time.Time) string {
	t = t.Local()
	if y, m, d := time.Now().Date(); t.Year() == y && t.Month() == m && t.Day() == d {
		return t.Format("15:04")
	}
	return fmt.Sprintf("%s %s", t.Format("Jan 2"), t.Format("15:04"))
}
