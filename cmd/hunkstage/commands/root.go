// Package commands implements the CLI commands for hunkstage.
package commands

import (
	"os"

	"github.com/irahardianto/hunkstage/internal/platform/logger"
	"github.com/spf13/cobra"
)

// Global flag values accessible to all commands.
var (
	flagJSON       bool
	flagVerbose    bool
	flagNoColor    bool
	flagContext    int
	flagConfigPath string
)

// rootCmd is the base command for the hunkstage CLI.
var rootCmd = &cobra.Command{
	Use:   "hunkstage",
	Short: "Stage, unstage and revert single hunks or lines",
	Long: `Hunkstage builds minimal patches from the diff of one file so that a single
hunk, a single line or a range of lines can be staged, unstaged or reverted
without disturbing any other change in the file.

Run 'hunkstage show <path>' to list hunks and line numbers, then pass them to
stage, unstage or revert with --hunk and --line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		l := logger.New(flagVerbose, flagJSON, os.Stderr)
		ctx := logger.WithContext(cmd.Context(), l)
		cmd.SetContext(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output results as JSON to stdout")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Show debug logs and the applied patch")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().IntVarP(&flagContext, "context", "U", -1, "Context lines around each hunk (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config file (default ~/.config/hunkstage/config.yaml)")
}

// Execute runs the root command. Returns an error if the command fails.
func Execute() error {
	return rootCmd.Execute()
}
