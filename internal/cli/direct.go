package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/calcharness/internal/harness"
)

// NewDirectCommand creates the direct command.
func NewDirectCommand(rootOpts *RootOptions) *cobra.Command {
	return newDirectCommand(&RunOptions{RootOptions: rootOpts})
}

func newDirectCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "direct",
		Short: "Run the scenario in an already initialized process",
		Long: `Run the scenario against the process service factory without
bootstrapping it. By default test setup runs first; with --setup=false the
run reports that the test environment is not initialized.

Examples:
  calcharness direct
  calcharness direct --setup=false`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(opts, harness.EntryDirect, cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Setup, "setup", true, "perform test setup before the run")

	return cmd
}
