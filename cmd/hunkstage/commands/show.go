package commands

import (
	"github.com/spf13/cobra"
)

var (
	flagStaged bool
	flagWatch  bool
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "List the hunks and lines of a file's diff",
	Long: `Show prints the unstaged diff of a file, or the staged diff with --staged,
numbering every hunk and every line so they can be passed to stage, unstage
and revert. The first column is the row of the full diff text, for --row.
With --watch the diff is printed again whenever the file or the
index changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd.Context(), args[0], flagStaged, flagWatch)
	},
}

func init() {
	showCmd.Flags().BoolVar(&flagStaged, "staged", false, "Show the staged diff instead of the unstaged one")
	showCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reprint the diff whenever the file or index changes")
	rootCmd.AddCommand(showCmd)
}
