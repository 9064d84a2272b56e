package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// State is a run's position in the harness state machine.
type State int

const (
	StateUnstarted State = iota
	StateEnvironmentReady
	StateRuntimeReady
	StateDocumentOpen
	// Values are written but formulas have not been evaluated yet.
	StatePopulatedUninitializedFormulas
	StateRecalculated
	StateReported
	StateClosed

	StateBootstrapFailed
	StateServiceManagerUnavailable
	StateGraphicsInitFailed
	StateDocumentUnavailable
)

var stateNames = map[State]string{
	StateUnstarted:                      "Unstarted",
	StateEnvironmentReady:               "EnvironmentReady",
	StateRuntimeReady:                   "RuntimeReady",
	StateDocumentOpen:                   "DocumentOpen",
	StatePopulatedUninitializedFormulas: "PopulatedUninitializedFormulas",
	StateRecalculated:                   "Recalculated",
	StateReported:                       "Reported",
	StateClosed:                         "Closed",
	StateBootstrapFailed:                "BootstrapFailed",
	StateServiceManagerUnavailable:      "ServiceManagerUnavailable",
	StateGraphicsInitFailed:             "GraphicsInitFailed",
	StateDocumentUnavailable:            "DocumentUnavailable",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	parsed, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

var transitions = map[State][]State{
	StateUnstarted:                      {StateEnvironmentReady},
	StateEnvironmentReady:               {StateRuntimeReady, StateBootstrapFailed, StateServiceManagerUnavailable, StateGraphicsInitFailed},
	StateRuntimeReady:                   {StateDocumentOpen, StateDocumentUnavailable},
	StateDocumentOpen:                   {StatePopulatedUninitializedFormulas, StateClosed},
	StatePopulatedUninitializedFormulas: {StateRecalculated, StateClosed},
	StateRecalculated:                   {StateReported, StateClosed},
	StateReported:                       {StateClosed},
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError reports an illegal state change.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// Transition is one recorded state change.
type Transition struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Seq    int64  `json:"seq" yaml:"seq"`
	From   State  `json:"from" yaml:"from"`
	To     State  `json:"to" yaml:"to"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Lifecycle tracks one run through the state machine. A nil *Lifecycle
// accepts every call and records nothing.
type Lifecycle struct {
	ctx    context.Context
	runID  string
	clock  Sequencer
	rec    Recorder
	logger *slog.Logger

	state State
	trace []Transition
}

func newLifecycle(ctx context.Context, runID string, clock Sequencer, rec Recorder, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Lifecycle{
		ctx:    ctx,
		runID:  runID,
		clock:  clock,
		rec:    rec,
		logger: logger,
		state:  StateUnstarted,
	}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	if l == nil {
		return StateUnstarted
	}
	return l.state
}

// Advance moves to next and records the step. An illegal step leaves the
// state unchanged, is logged at Warn and returned as a *TransitionError.
// Recorder failures are logged, not returned.
func (l *Lifecycle) Advance(next State, detail string) error {
	if l == nil {
		return nil
	}
	if !CanTransition(l.state, next) {
		err := &TransitionError{From: l.state, To: next}
		l.logger.Warn("illegal state transition",
			"run_id", l.runID,
			"from", err.From.String(),
			"to", err.To.String(),
			"detail", detail,
		)
		return err
	}

	t := Transition{
		RunID:  l.runID,
		Seq:    l.clock.Next(),
		From:   l.state,
		To:     next,
		Detail: detail,
	}
	l.state = next
	l.trace = append(l.trace, t)

	l.logger.Debug("state transition",
		"run_id", t.RunID,
		"seq", t.Seq,
		"from", t.From.String(),
		"to", t.To.String(),
		"detail", t.Detail,
	)

	if l.rec != nil {
		if err := l.rec.RecordTransition(l.ctx, t); err != nil {
			l.logger.Warn("journal write failed", "run_id", l.runID, "error", err)
		}
	}
	return nil
}

// Trace returns the transitions so far.
func (l *Lifecycle) Trace() []Transition {
	if l == nil {
		return nil
	}
	return append([]Transition(nil), l.trace...)
}
