package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/calcharness/internal/harness"
	"github.com/roach88/calcharness/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	RunID   string // optional; defaults to the latest run
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run     journal.Run          `json:"run" yaml:"run"`
	Trace   []harness.Transition `json:"trace" yaml:"trace"`
	Valid   bool                 `json:"valid" yaml:"valid"`
	Problem string               `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the state transitions of a journaled run",
		Long: `Show a run's outcome and its ordered state transitions, and check
that the transitions form a well-formed lifecycle.

Examples:
  calcharness trace --journal ./runs.db
  calcharness trace --journal ./runs.db --run 0192f3c1-... --format yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (defaults to the latest run)")

	return cmd
}

// openExistingJournal opens path without creating it.
func openExistingJournal(path string) (*journal.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "journal not found", err)
	}
	st, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, nil
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingJournal(opts.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	var run journal.Run
	if opts.RunID != "" {
		run, err = st.ReadRun(ctx, opts.RunID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if errors.Is(err, journal.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, "no such run", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	trace, err := st.ReadTransitions(ctx, run.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read transitions", err)
	}

	result := TraceResult{Run: run, Trace: trace, Valid: true}
	if err := harness.CheckTrace(trace); err != nil {
		result.Valid = false
		var ae *harness.AssertionError
		if errors.As(err, &ae) {
			result.Problem = ae.Type
		} else {
			result.Problem = err.Error()
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if f.Structured() {
		return f.Success(result)
	}
	outputTraceText(cmd.OutOrStdout(), result)
	return nil
}

func outputTraceText(w io.Writer, r TraceResult) {
	fmt.Fprintf(w, "Run: %s (%s)\n", r.Run.RunID, r.Run.Entry)
	if r.Run.Ended {
		fmt.Fprintf(w, "Outcome: exit %d, final %s", r.Run.ExitCode, r.Run.Final)
		if r.Run.Value != nil {
			fmt.Fprintf(w, ", value %.2f", *r.Run.Value)
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "Outcome: run did not finish")
	}
	for _, e := range r.Run.Errors {
		fmt.Fprintf(w, "Error: %s\n", e)
	}

	fmt.Fprintln(w, "Timeline:")
	for _, t := range r.Trace {
		fmt.Fprintf(w, "  [%d] %s -> %s", t.Seq, t.From, t.To)
		if t.Detail != "" {
			fmt.Fprintf(w, "  %s", t.Detail)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintln(w, "Lifecycle: ok")
	} else {
		fmt.Fprintf(w, "Lifecycle: invalid (%s)\n", r.Problem)
	}
}
