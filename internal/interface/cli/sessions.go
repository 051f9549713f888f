package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"list"},
	Short:   "List hiring-planning sessions",
	Long: `List stored sessions, most recently active first.

Shows the roles discussed, message counts and last activity.

Examples:
  hireplan sessions
  hireplan sessions --limit 5`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum number of sessions to display")
}

func runSessions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	summaries, err := a.sessions.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No sessions found. Run 'hireplan' or 'hireplan ask' to start one.")
		return nil
	}

	total := len(summaries)
	if sessionsLimit > 0 && total > sessionsLimit {
		summaries = summaries[:sessionsLimit]
	}

	fmt.Fprintf(out, "Showing %d of %d session(s)\n\n", len(summaries), total)
	for i, s := range summaries {
		fmt.Fprintf(out, "[%d] %s\n", i+1, s.ID)
		if len(s.Roles) > 0 {
			fmt.Fprintf(out, "    Roles:    %s\n", strings.Join(s.Roles, ", "))
		}
		fmt.Fprintf(out, "    Messages: %d\n", s.MessageCount)
		fmt.Fprintf(out, "    Updated:  %s\n", humanize.Time(s.UpdatedAt))
		fmt.Fprintf(out, "    Created:  %s\n", s.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM"))
		fmt.Fprintln(out)
	}
	return nil
}
