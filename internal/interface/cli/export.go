package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/neilberkman/hireplan/internal/core/export"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session to markdown",
	Long: `Export a session, its hiring needs and generated artifacts to a markdown file.

By default exports to current directory as session-<id>.md.
Use --output to specify a custom path, or "-" for stdout.

Examples:
  hireplan export 0ccfddc4-00e7-443a-bb82-58ede5936619
  hireplan export 0ccfddc4-00e7-443a-bb82-58ede5936619 --output ~/hiring.md
  hireplan export 0ccfddc4-00e7-443a-bb82-58ede5936619 -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: session-<id>.md in current directory)")
}

func runExport(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	sess, err := a.loadSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	content := export.Markdown(sess)

	if exportOutput == "-" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}

	// Determine output path
	outputPath := exportOutput
	if outputPath == "" {
		shortID := sessionID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		outputPath = fmt.Sprintf("session-%s.md", shortID)
	}
	if !filepath.IsAbs(outputPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported session to: %s\n", outputPath)
	return nil
}
