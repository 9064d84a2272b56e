package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a trace breaks a lifecycle guarantee.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []Transition
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, t := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s", t.Seq, t.From, t.To)
		if t.Detail != "" {
			fmt.Fprintf(&buf, " (%s)", t.Detail)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// CheckTrace verifies that trace is a well-formed run: it starts from
// Unstarted, every step is legal, sequence numbers strictly increase, and
// it ends in a terminal state. A run that opened a document must end in
// Closed.
func CheckTrace(trace []Transition) error {
	if len(trace) == 0 {
		return &AssertionError{Type: "non_empty", Expected: "at least one transition", Actual: "empty trace"}
	}
	if trace[0].From != StateUnstarted {
		return &AssertionError{
			Type:     "start",
			Expected: StateUnstarted.String(),
			Actual:   trace[0].From.String(),
			Trace:    trace,
		}
	}

	opened := false
	for i, t := range trace {
		if i > 0 {
			prev := trace[i-1]
			if t.From != prev.To {
				return &AssertionError{
					Type:     "continuity",
					Expected: fmt.Sprintf("step %d to start at %s", i, prev.To),
					Actual:   t.From.String(),
					Trace:    trace,
				}
			}
			if t.Seq <= prev.Seq {
				return &AssertionError{
					Type:     "seq_order",
					Expected: fmt.Sprintf("seq > %d", prev.Seq),
					Actual:   fmt.Sprintf("seq %d", t.Seq),
					Trace:    trace,
				}
			}
		}
		if !CanTransition(t.From, t.To) {
			return &AssertionError{
				Type:     "legal_transition",
				Expected: fmt.Sprintf("a legal successor of %s", t.From),
				Actual:   t.To.String(),
				Trace:    trace,
			}
		}
		if t.To == StateDocumentOpen {
			opened = true
		}
	}

	last := trace[len(trace)-1].To
	if opened && last != StateClosed {
		return &AssertionError{
			Type:     "document_closed",
			Expected: StateClosed.String(),
			Actual:   last.String(),
			Trace:    trace,
		}
	}
	if !last.Terminal() {
		return &AssertionError{
			Type:     "terminal",
			Expected: "a terminal state",
			Actual:   last.String(),
			Trace:    trace,
		}
	}
	return nil
}

// TraceStates lists the states a trace passes through, starting state
// included.
func TraceStates(trace []Transition) []State {
	if len(trace) == 0 {
		return nil
	}
	states := make([]State, 0, len(trace)+1)
	states = append(states, trace[0].From)
	for _, t := range trace {
		states = append(states, t.To)
	}
	return states
}
