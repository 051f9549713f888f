package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	showJSON     bool
	showMessages int
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's hiring needs and recent messages",
	Long: `Show what a session has captured so far: roles, skills, experience,
budget, timeline, generated artifacts and the latest messages.

Use --json to print the stored session document.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the raw session document")
	showCmd.Flags().IntVarP(&showMessages, "messages", "n", 6, "Number of recent messages to show")
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	sess, err := a.loadSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if showJSON {
		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Session %s\n", sess.ID)
	fmt.Fprintf(out, "Created:  %s\n", humanize.Time(sess.CreatedAt.Time))
	fmt.Fprintf(out, "Updated:  %s\n", humanize.Time(sess.LastActivity().Time))
	fmt.Fprintf(out, "Messages: %d\n\n", len(sess.History))

	needs := sess.HiringNeeds
	if len(needs.Roles) == 0 {
		fmt.Fprintln(out, "No roles captured yet.")
	}
	for _, role := range needs.Roles {
		fmt.Fprintf(out, "%s\n", role)
		fmt.Fprintf(out, "  Skills:     %s\n", orDash(strings.Join(needs.Skills[role], ", ")))
		fmt.Fprintf(out, "  Experience: %s\n", orDash(needs.Experience[role]))
		fmt.Fprintf(out, "  Budget:     %s\n", orDash(needs.Budget[role]))
		_, hasJD := sess.JobDescriptions[role]
		_, hasPlan := sess.HiringChecklists[role]
		fmt.Fprintf(out, "  Artifacts:  job description %s, checklist %s\n", yesNo(hasJD), yesNo(hasPlan))
	}
	if needs.Timeline != nil {
		fmt.Fprintf(out, "\nTimeline: %d weeks\n", *needs.Timeline)
	}

	history := sess.History
	if showMessages >= 0 && len(history) > showMessages {
		history = history[len(history)-showMessages:]
	}
	if len(history) > 0 {
		fmt.Fprintln(out)
	}
	for _, turn := range history {
		fmt.Fprintf(out, "[%s] %s\n", turn.Role, truncate(turn.Content, 100))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// truncate collapses whitespace and shortens s at a word boundary.
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}

	truncated := s[:maxLen]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > 0 && lastSpace > maxLen-20 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
