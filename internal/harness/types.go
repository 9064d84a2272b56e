package harness

import (
	"context"

	"github.com/roach88/calcharness/internal/bootstrap"
	"github.com/roach88/calcharness/internal/calc"
)

// Framework is the component runtime the full entry point bootstraps.
// Bootstrap calls its methods in declaration order and stops at the
// first failure. bootstrap.Runtime is the production implementation.
type Framework interface {
	SetCommandArgs(args []string)
	SetBootstrapVariable(name, value string)
	ExtendApplicationEnvironment() error
	InitialComponentContext(ctx context.Context) (*bootstrap.ComponentContext, error)
	SetProcessServiceFactory(f bootstrap.ServiceFactory)
	EnableHeadlessMode(consoleOnly bool)
	InitGraphics() error
}

// Engine constructs document containers.
type Engine interface {
	NewContainer(flags calc.ModelFlags) (Container, error)
}

// Container owns exactly one Document.
type Container interface {
	InitUnitTest() error
	Document() Document
	Close() error
}

// Document is the cell grid the scenario mutates.
type Document interface {
	InsertTab(idx int, name string) error
	SetValue(addr calc.Address, v float64) error
	SetFormula(addr calc.Address, formula string, g calc.Grammar) error
	CalcAll() error
	GetValue(addr calc.Address) (float64, error)
}

// EngineResolver locates the document engine once the runtime is up.
type EngineResolver func() (Engine, error)

// ModuleInitializer initializes the calc module against a factory.
type ModuleInitializer func(f bootstrap.ServiceFactory) error

// Entry names an entry point.
type Entry string

const (
	EntryFull   Entry = "full"
	EntryDirect Entry = "direct"
)

// RunInfo describes a run when it starts.
type RunInfo struct {
	RunID string
	Entry Entry
	Seq   int64
}

// Recorder observes runs. Implementations must tolerate being called
// from a run that later fails.
//
// BeginRun is called once before the first transition, RecordTransition
// once per state change in seq order, and EndRun once with the final
// outcome. Errors are logged by the harness and never change the
// outcome, so a broken journal cannot fail a run.
type Recorder interface {
	BeginRun(ctx context.Context, info RunInfo) error
	RecordTransition(ctx context.Context, t Transition) error
	EndRun(ctx context.Context, o *Outcome) error
}

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Outcome is the result of one run. Value is nil unless the scenario
// reached the report step. Errors holds each ERROR line printed, without
// the prefix.
type Outcome struct {
	RunID    string       `json:"run_id" yaml:"run_id"`
	Entry    Entry        `json:"entry" yaml:"entry"`
	ExitCode int          `json:"exit_code" yaml:"exit_code"`
	Final    State        `json:"final_state" yaml:"final_state"`
	Value    *float64     `json:"value,omitempty" yaml:"value,omitempty"`
	Errors   []string     `json:"errors,omitempty" yaml:"errors,omitempty"`
	Trace    []Transition `json:"trace" yaml:"trace"`
}

// OK reports whether the run exited successfully.
func (o *Outcome) OK() bool {
	return o.ExitCode == ExitSuccess
}

// AddError appends a diagnostic and marks the outcome failed.
func (o *Outcome) AddError(msg string) {
	o.Errors = append(o.Errors, msg)
	o.ExitCode = ExitFailure
}
