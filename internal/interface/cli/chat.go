package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/hireplan/internal/core/logging"
	"github.com/neilberkman/hireplan/internal/interface/tui"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat",
	Long: `Launch the terminal chat. Without --session a new session is started.

Logs are written to <data_dir>/logs/hireplan.log so they do not disturb the
screen.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Session id to resume")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	// The config decides the data dir, so the file logger comes second.
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	logger, closer, err := logging.SetupFile(a.cfg.LogDir(), "hireplan.log", level)
	if err != nil {
		return err
	}
	defer func() {
		_ = closer.Close()
	}()
	a.logger = logger

	ag, err := a.newAgent(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to set up completion provider: %w", err)
	}
	sess, err := ag.Start(ctx, chatSession)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	p := tea.NewProgram(
		tui.New(ctx, ag, sess),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if m, ok := finalModel.(tui.Model); ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Session saved. Resume with: hireplan chat --session %s\n", m.SessionID())
	}
	return nil
}
