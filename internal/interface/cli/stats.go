package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
)

var statsSince string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage analytics",
	Long: `Display the usage dashboard: sessions, average session duration,
most requested role, top tools, role distribution and sessions per day.

--since accepts natural language ("last week", "3 days ago", "yesterday")
or a date (2024-11-01) and restricts session figures to sessions active since
then. Tool and role counts are always all-time.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsSince, "since", "", "Only count sessions active since this time")
}

func runStats(cmd *cobra.Command, args []string) error {
	var since time.Time
	if statsSince != "" {
		t, err := parseSince(statsSince, time.Now())
		if err != nil {
			return err
		}
		since = t
	}

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	stats, err := a.analytics.UsageStatsSince(cmd.Context(), since)
	if err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}
	printStats(cmd.OutOrStdout(), stats, since)
	return nil
}

func printStats(out io.Writer, stats analytics.Stats, since time.Time) {
	fmt.Fprintln(out, "Usage Statistics")
	fmt.Fprintln(out, "================")
	if !since.IsZero() {
		fmt.Fprintf(out, "Since: %s (%s)\n", since.Local().Format("Jan 2, 2006 3:04 PM"), humanize.Time(since))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Total Sessions:       %s\n", humanize.Comma(int64(stats.TotalSessions)))
	fmt.Fprintf(out, "Total Messages:       %s\n", humanize.Comma(int64(stats.TotalMessages)))
	fmt.Fprintf(out, "Avg Session Duration: %s\n", formatDuration(stats.AvgSessionDurationSeconds))
	if stats.HasMostRequestedRole() {
		fmt.Fprintf(out, "Most Requested Role:  %s\n", stats.MostRequestedRole)
	} else {
		fmt.Fprintln(out, "Most Requested Role:  none yet")
	}
	fmt.Fprintln(out)

	if len(stats.TopTools) > 0 {
		fmt.Fprintln(out, "Top Tools:")
		for i, tool := range stats.TopTools {
			fmt.Fprintf(out, "  %d. %-26s %d\n", i+1, tool.Name, tool.Count)
		}
		fmt.Fprintln(out)
	}

	if len(stats.RoleDistribution) > 0 {
		total := 0
		for _, r := range stats.RoleDistribution {
			total += r.Count
		}
		fmt.Fprintln(out, "Role Distribution:")
		for _, r := range stats.RoleDistribution {
			pct := 100 * float64(r.Count) / float64(total)
			fmt.Fprintf(out, "  %-20s %-20s %5.1f%% (%d)\n", r.Name, bar(pct, 20), pct, r.Count)
		}
		fmt.Fprintln(out)
	}

	if len(stats.SessionsByDay) > 0 {
		fmt.Fprintln(out, "Sessions per Day:")
		for _, d := range stats.SessionsByDay {
			fmt.Fprintf(out, "  %s  %d\n", d.Day, d.Sessions)
		}
	}
}

// parseSince parses natural language first, then plain date layouts.
func parseSince(s string, now time.Time) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(s, now)
	if err == nil && result != nil {
		return result.Time, nil
	}

	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not understand --since %q", s)
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}

func bar(pct float64, width int) string {
	n := int(pct / 100 * float64(width))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
