package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askSession string
	askQuiet   bool
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Long: `Send a single message to a session and print the assistant reply.

Without --session a new session is started and its id is printed to stderr,
so a conversation can be continued with later calls.

Examples:
  hireplan ask "We need a founding engineer and a GenAI intern"
  hireplan ask --session 3f2a... "generate job description"
  hireplan ask --session 3f2a... "create a hiring plan, timeline 4 weeks"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Session id to continue")
	askCmd.Flags().BoolVarP(&askQuiet, "quiet", "q", false, "Do not show a spinner")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	a, err := openApp(stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	ag, err := a.newAgent(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to set up completion provider: %w", err)
	}

	sess, err := ag.Start(ctx, askSession)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	if askSession == "" {
		fmt.Fprintf(stderr, "session: %s\n", sess.ID)
	}

	var spinner *Spinner
	if !askQuiet {
		spinner = NewSpinner(stderr, "Thinking...")
		spinner.Start()
	}
	reply := ag.Handle(ctx, sess, strings.Join(args, " "))
	if spinner != nil {
		spinner.Stop()
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	warnAbsorbed(stderr, reply.Err)
	return nil
}
