package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/calcharness/internal/environ"
)

// Options configures a Harness. Zero fields take production defaults.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Framework is the runtime RunFull bootstraps. Required for RunFull.
	Framework Framework

	// InitModule initializes the calc module after bootstrap.
	InitModule ModuleInitializer

	// Resolve locates the engine once the runtime is up. Defaults to
	// ResolveProcessEngine.
	Resolve EngineResolver

	// Setenv applies environment flags. Defaults to os.Setenv.
	Setenv environ.Setter

	// Executable reports the running executable path. Defaults to
	// os.Executable. A failure panics.
	Executable func() (string, error)

	// SetUp, when set, initializes the process at the start of RunDirect,
	// typically a closure over the package-level SetUp. Its failure ends
	// the run like a bootstrap failure. RunFull ignores it.
	SetUp func(ctx context.Context) error

	Recorder Recorder
	Clock    Sequencer
	RunIDs   RunIDGenerator
}

// Harness runs the scenario through one of the two entry points.
type Harness struct {
	opts Options
}

// New creates a harness.
func New(opts Options) *Harness {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Resolve == nil {
		opts.Resolve = ResolveProcessEngine
	}
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	if opts.RunIDs == nil {
		opts.RunIDs = UUIDv7Generator{}
	}
	return &Harness{opts: opts}
}

// RunFull prepares the environment, bootstraps the runtime and runs the
// scenario.
func (h *Harness) RunFull(ctx context.Context) *Outcome {
	lc, out := h.begin(ctx, EntryFull)

	if err := environ.Prepare(h.opts.Setenv); err != nil {
		panic(fmt.Errorf("prepare environment: %w", err))
	}
	var dir string
	if h.opts.Executable == nil {
		dir = environ.MustExecutableDir()
	} else {
		d, err := environ.ExecutableDir(h.opts.Executable)
		if err != nil {
			panic(err)
		}
		dir = d
	}
	_ = lc.Advance(StateEnvironmentReady, dir)

	if h.opts.Framework == nil {
		return h.fail(ctx, lc, out, &BootstrapError{Stage: StageContext, Err: errors.New("no runtime framework configured")})
	}
	factory, err := Bootstrap(ctx, h.opts.Framework, []string{ProgramName}, dir)
	if err != nil {
		return h.fail(ctx, lc, out, err)
	}

	if h.opts.InitModule != nil {
		if err := h.opts.InitModule(factory); err != nil {
			return h.fail(ctx, lc, out, &BootstrapError{Stage: StageModule, Err: err})
		}
	}
	eng, err := h.opts.Resolve()
	if err != nil {
		return h.fail(ctx, lc, out, &BootstrapError{Stage: StageModule, Err: err})
	}
	_ = lc.Advance(StateRuntimeReady, "bootstrapped")

	return h.runDocument(ctx, lc, out, eng)
}

// RunDirect runs the scenario in a process SetUp already initialized,
// either beforehand or through Options.SetUp. Without that precondition
// the run ends in ServiceManagerUnavailable.
func (h *Harness) RunDirect(ctx context.Context) *Outcome {
	lc, out := h.begin(ctx, EntryDirect)

	if h.opts.SetUp != nil {
		err := h.opts.SetUp(ctx)
		_ = lc.Advance(StateEnvironmentReady, "test setup")
		if err != nil {
			return h.fail(ctx, lc, out, err)
		}
	} else {
		_ = lc.Advance(StateEnvironmentReady, "direct entry")
	}

	eng, err := h.opts.Resolve()
	if err != nil {
		return h.fail(ctx, lc, out, &BootstrapError{Stage: StagePrecondition, Err: err})
	}
	_ = lc.Advance(StateRuntimeReady, "precondition satisfied")

	return h.runDocument(ctx, lc, out, eng)
}

func (h *Harness) begin(ctx context.Context, entry Entry) (*Lifecycle, *Outcome) {
	runID := h.opts.RunIDs.Generate()
	lc := newLifecycle(ctx, runID, h.opts.Clock, h.opts.Recorder, h.opts.Logger)
	out := &Outcome{RunID: runID, Entry: entry, ExitCode: ExitSuccess}

	h.opts.Logger.Info("run started", "run_id", runID, "entry", string(entry))
	if h.opts.Recorder != nil {
		info := RunInfo{RunID: runID, Entry: entry, Seq: h.opts.Clock.Next()}
		if err := h.opts.Recorder.BeginRun(ctx, info); err != nil {
			h.opts.Logger.Warn("journal write failed", "run_id", runID, "error", err)
		}
	}
	return lc, out
}

func (h *Harness) runDocument(ctx context.Context, lc *Lifecycle, out *Outcome, eng Engine) *Outcome {
	err := WithDocument(eng, lc, func(doc Document) error {
		v, err := runScenario(doc, lc)
		if err != nil {
			return err
		}
		if err := Report(h.opts.Stdout, v); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		out.Value = &v
		return lc.Advance(StateReported, fmt.Sprintf("%.2f", v))
	})
	if err != nil {
		msg := "scenario failed: " + err.Error()
		if lc.State() == StateDocumentUnavailable {
			msg = "document unavailable: " + err.Error()
		}
		h.diagnose(msg)
		out.AddError(msg)
	}
	return h.end(ctx, lc, out)
}

func (h *Harness) fail(ctx context.Context, lc *Lifecycle, out *Outcome, err error) *Outcome {
	var be *BootstrapError
	if !errors.As(err, &be) {
		be = &BootstrapError{Stage: StageContext, Err: err}
	}
	_ = lc.Advance(be.State(), string(be.Stage))
	h.diagnose(be.Error())
	out.AddError(be.Error())
	return h.end(ctx, lc, out)
}

func (h *Harness) diagnose(msg string) {
	fmt.Fprintf(h.opts.Stderr, "ERROR: %s\n", msg)
	h.opts.Logger.Error("run failed", "error", msg)
}

func (h *Harness) end(ctx context.Context, lc *Lifecycle, out *Outcome) *Outcome {
	out.Final = lc.State()
	out.Trace = lc.Trace()
	if h.opts.Recorder != nil {
		if err := h.opts.Recorder.EndRun(ctx, out); err != nil {
			h.opts.Logger.Warn("journal write failed", "run_id", out.RunID, "error", err)
		}
	}
	h.opts.Logger.Info("run finished",
		"run_id", out.RunID,
		"exit_code", out.ExitCode,
		"final_state", out.Final.String(),
	)
	return out
}
