package commands

import (
	"errors"

	"github.com/irahardianto/hunkstage/internal/engine/director"
	"github.com/spf13/cobra"
)

// ErrNotConfirmed is returned when revert runs without --yes.
var ErrNotConfirmed = errors.New("revert discards working tree changes; pass --yes to confirm or --dry-run to preview")

// applyFlags holds the flags of one stage, unstage or revert command.
type applyFlags struct {
	sel    SelectionFlags
	dryRun bool
	yes    bool
}

// newApplyCommand builds a stage, unstage or revert command. Each command
// owns its flag values.
func newApplyCommand(kind director.Kind, short, long string) *cobra.Command {
	f := &applyFlags{}

	cmd := &cobra.Command{
		Use:   kind.String() + " <path>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind == director.KindRevert && !f.yes && !f.dryRun {
				return reportSetupError(cmd.Context(), ErrNotConfirmed)
			}
			return runApply(cmd.Context(), args[0], ApplyOpts{
				Kind:      kind,
				Selection: f.sel,
				DryRun:    f.dryRun,
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.sel.Hunk, "hunk", 0, "Hunk number as listed by show")
	flags.IntVar(&f.sel.Line, "line", 0, "Line number within the hunk")
	flags.StringVar(&f.sel.Lines, "lines", "", "Line range within the hunk, as A-B")
	flags.IntVar(&f.sel.Row, "row", 0, "Row as numbered in the first column of show")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Print the patch without applying it")
	cmd.MarkFlagsMutuallyExclusive("line", "lines", "row")
	cmd.MarkFlagsMutuallyExclusive("hunk", "row")
	cmd.MarkFlagsOneRequired("hunk", "row")

	if kind == director.KindRevert {
		flags.BoolVar(&f.yes, "yes", false, "Confirm discarding working tree changes")
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(
		newApplyCommand(director.KindStage,
			"Stage one hunk or selected lines of a file",
			`Stage adds the selected hunk, line or line range of a file's unstaged diff
to the index. Other changes in the file stay unstaged.`),
		newApplyCommand(director.KindUnstage,
			"Unstage one hunk or selected lines of a file",
			`Unstage removes the selected hunk, line or line range of a file's staged
diff from the index. The working tree is not touched.`),
		newApplyCommand(director.KindRevert,
			"Discard one hunk or selected lines from the working tree",
			`Revert undoes the selected hunk, line or line range of a file's unstaged
diff in the working tree. The discarded changes cannot be recovered, so --yes
is required unless --dry-run is given.`),
	)
}
