package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/calcharness/internal/harness"
)

// NewFullCommand creates the full command.
func NewFullCommand(rootOpts *RootOptions) *cobra.Command {
	return newFullCommand(&RunOptions{RootOptions: rootOpts})
}

func newFullCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "full",
		Short: "Bootstrap the runtime and run the scenario",
		Long: `Prepare the headless environment, bootstrap the component runtime from
the executable directory, initialize the calc module and run the scenario.

Examples:
  calcharness full
  calcharness full --journal ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(opts, harness.EntryFull, cmd)
		},
	}
	opts.addFlags(cmd)

	return cmd
}
