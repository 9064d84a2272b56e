package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/calcharness/internal/bootstrap"
	"github.com/roach88/calcharness/internal/calc"
	"github.com/roach88/calcharness/internal/harness"
	"github.com/roach88/calcharness/internal/journal"
)

// RunOptions holds flags shared by the full and direct commands.
type RunOptions struct {
	*RootOptions
	Journal string

	// Setup runs test setup before the direct entry point.
	Setup bool

	// Overrides for testing. Nil means the process defaults.
	RunIDs     harness.RunIDGenerator
	Executable func() (string, error)
	Getenv     func(string) string
	Setenv     func(string, string) error
}

func (o *RunOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Journal, "journal", "", "record the run in this SQLite journal")
}

// newLogger logs to w at debug level when verbose; otherwise it discards.
// Diagnostics a run must report go through the harness's ERROR lines.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runHarness(opts *RunOptions, entry harness.Entry, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, opts.Verbose)
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: stderr, Verbose: opts.Verbose}

	getenv, setenv := opts.Getenv, opts.Setenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if setenv == nil {
		setenv = os.Setenv
	}

	hopts := harness.Options{
		Stdout:     cmd.OutOrStdout(),
		Stderr:     stderr,
		Logger:     logger,
		Setenv:     setenv,
		Executable: opts.Executable,
		RunIDs:     opts.RunIDs,
	}
	if f.Structured() {
		hopts.Stdout = io.Discard
	}

	if opts.Journal != "" {
		st, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("error closing journal", "error", cerr)
			}
		}()
		last, err := st.MaxSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		hopts.Recorder = st
		hopts.Clock = harness.NewClockAt(last)
		logger.Debug("journal ready", "path", opts.Journal, "resume_seq", last)
	}

	rt := bootstrap.NewRuntime(bootstrap.WithEnv(getenv, setenv), bootstrap.WithLogger(logger))
	mod := &calc.Module{Options: []calc.EngineOption{calc.WithGetenv(getenv), calc.WithLogger(logger)}}

	var out *harness.Outcome
	switch entry {
	case harness.EntryFull:
		hopts.Framework = rt
		hopts.InitModule = mod.Init
		out = harness.New(hopts).RunFull(ctx)
	case harness.EntryDirect:
		if opts.Setup {
			// Setup writes the flags into the same environment rt and mod read.
			hopts.SetUp = func(ctx context.Context) error {
				return harness.SetUp(ctx, rt, mod.Init, setenv, opts.Executable)
			}
		}
		out = harness.New(hopts).RunDirect(ctx)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown entry point %q", entry))
	}

	if f.Structured() {
		var err error
		if out.OK() {
			err = f.Success(out)
		} else {
			err = f.Error("E_RUN", out.Errors[0], out)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	}
	if !out.OK() {
		return NewExitError(ExitFailure, "")
	}
	return nil
}
