package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	dataDir     string
	logLevel    string
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hireplan",
	Short: "Hiring-planning assistant",
	Long: `hireplan - plan early-stage hires in a conversation

Chat about the roles you need, then generate job descriptions and hiring
checklists. Sessions and usage analytics are stored locally (file or sqlite)
or in redis.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the chat TUI if no subcommand specified
		return chatCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/hireplan/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}
