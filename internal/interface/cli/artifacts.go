package cli

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/spf13/cobra"
)

var (
	jdSkills      []string
	jdExperience  string
	jdCopy        bool
	checklistWeek int
	checklistCopy bool
)

var jdCmd = &cobra.Command{
	Use:   "jd <role>",
	Short: "Draft a job description",
	Long: `Render a job description for a role without a conversation.

Roles containing "engineer" or "found" use the engineering template, all
others the intern template. Templates can be overridden in the config
directory.

Examples:
  hireplan jd "founding engineer" --skills go,postgres --experience "5+ years"
  hireplan jd "genai intern" --copy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJD,
}

var checklistCmd = &cobra.Command{
	Use:   "checklist <role>",
	Short: "Create a hiring checklist",
	Long: `Build the staged hiring checklist for a role as JSON.

Timelines under 6 weeks halve every timeframe.

Examples:
  hireplan checklist "founding engineer" --weeks 4
  hireplan checklist intern --copy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChecklist,
}

var marketCmd = &cobra.Command{
	Use:   "market <query>",
	Short: "Look up job market data",
	Long: `Print salary, demand and in-demand skills for a role query.

Examples:
  hireplan market "founding engineer"
  hireplan market genai`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), artifacts.MarketReport(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jdCmd, checklistCmd, marketCmd)

	jdCmd.Flags().StringSliceVar(&jdSkills, "skills", nil, "Comma-separated skills (default: relevant technical skills)")
	jdCmd.Flags().StringVar(&jdExperience, "experience", agent.DefaultExperience, "Experience level")
	jdCmd.Flags().BoolVarP(&jdCopy, "copy", "c", false, "Copy the result to the clipboard")

	checklistCmd.Flags().IntVarP(&checklistWeek, "weeks", "w", agent.DefaultTimelineWeeks, "Hiring timeline in weeks")
	checklistCmd.Flags().BoolVarP(&checklistCopy, "copy", "c", false, "Copy the result to the clipboard")
}

func runJD(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	skills := jdSkills
	if len(skills) == 0 {
		skills = agent.DefaultSkills
	}
	role := strings.Join(args, " ")
	return emit(cmd, a.generator().RenderJobDescription(role, skills, jdExperience), jdCopy)
}

func runChecklist(cmd *cobra.Command, args []string) error {
	if checklistWeek <= 0 {
		return fmt.Errorf("--weeks must be positive, got %d", checklistWeek)
	}
	role := strings.Join(args, " ")
	return emit(cmd, artifacts.BuildChecklist(role, checklistWeek).String(), checklistCopy)
}

// emit prints text and optionally copies it to the clipboard.
func emit(cmd *cobra.Command, text string, copyIt bool) error {
	fmt.Fprintln(cmd.OutOrStdout(), text)
	if !copyIt {
		return nil
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
	return nil
}
