package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the stable part of an Outcome: everything except the run ID.
type Snapshot struct {
	Entry    Entry          `json:"entry"`
	ExitCode int            `json:"exit_code"`
	Final    string         `json:"final_state"`
	Stdout   string         `json:"stdout"`
	Errors   []string       `json:"errors,omitempty"`
	Trace    []snapshotStep `json:"trace"`
}

type snapshotStep struct {
	Seq    int64  `json:"seq"`
	From   string `json:"from"`
	To     string `json:"to"`
	Detail string `json:"detail,omitempty"`
}

// NewSnapshot builds a snapshot from o and the captured stdout.
func NewSnapshot(o *Outcome, stdout string) Snapshot {
	s := Snapshot{
		Entry:    o.Entry,
		ExitCode: o.ExitCode,
		Final:    o.Final.String(),
		Stdout:   stdout,
		Errors:   o.Errors,
		Trace:    make([]snapshotStep, 0, len(o.Trace)),
	}
	for _, t := range o.Trace {
		s.Trace = append(s.Trace, snapshotStep{
			Seq:    t.Seq,
			From:   t.From.String(),
			To:     t.To.String(),
			Detail: t.Detail,
		})
	}
	return s
}

// AssertGolden compares o against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, o *Outcome, stdout string) {
	t.Helper()

	data, err := json.MarshalIndent(NewSnapshot(o, stdout), "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
