package cli

import (
	"fmt"
	"strings"

	"github.com/neilberkman/hireplan/internal/core/llm"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/neilberkman/hireplan/pkg/transcript"
	"github.com/spf13/cobra"
)

var importSession string

var importCmd = &cobra.Command{
	Use:   "import <transcript.jsonl>",
	Short: "Import a conversation transcript into a session",
	Long: `Replay a JSON Lines transcript into a session. Each line holds one turn:

  {"role": "user", "content": "We need a founding engineer"}
  {"role": "assistant", "content": "What skills matter most?"}

Turns are appended as recorded, hiring needs are extracted from them and
analytics are updated. The completion service is not called.

Without --session a new session is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importSession, "session", "s", "", "Session id to append to")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	tr, err := transcript.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	for _, s := range tr.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s line %d: %s\n", args[0], s.Line, s.Reason)
	}
	if len(tr.Entries) == 0 {
		return fmt.Errorf("transcript %s has no turns", args[0])
	}

	turns := make([]models.Turn, 0, len(tr.Entries))
	for _, e := range tr.Entries {
		role, err := models.ParseRole(e.Role)
		if err != nil {
			return fmt.Errorf("line %d: %w", e.Line, err)
		}
		turn := models.Turn{Role: role, Content: e.Content}
		if !e.Timestamp.IsZero() {
			turn.Timestamp = models.At(e.Timestamp)
		}
		turns = append(turns, turn)
	}

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	// Import never calls the provider; a static one keeps it usable without
	// an API key.
	a.cfg.LLM.Provider = llm.ProviderStatic
	ag, err := a.newAgent(ctx, nil)
	if err != nil {
		return err
	}

	sess, err := ag.Start(ctx, importSession)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	res, err := ag.Import(ctx, sess, turns)
	if err != nil {
		return fmt.Errorf("failed to import transcript: %w", err)
	}

	fmt.Fprintf(out, "Imported %d turn(s) into session %s\n", res.Turns, sess.ID)
	if len(res.Roles) > 0 {
		fmt.Fprintf(out, "Roles: %s\n", strings.Join(res.Roles, ", "))
	}
	warnAbsorbed(cmd.ErrOrStderr(), res.Err)
	return nil
}
