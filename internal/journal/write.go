package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/calcharness/internal/harness"
)

var _ harness.Recorder = (*Store)(nil)

// BeginRun inserts the run row with its entry point and starting
// sequence number. The outcome columns stay at their defaults (ended = 0)
// until EndRun.
//
// A duplicate run ID is an error: run IDs are UUIDv7 and never reused,
// so a collision means two harnesses share a generator.
func (s *Store) BeginRun(ctx context.Context, info harness.RunInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, entry, started_seq)
		VALUES (?, ?, ?)
	`, info.RunID, string(info.Entry), info.Seq)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordTransition appends one state change. Uses ON CONFLICT DO NOTHING,
// so rewriting the same (run_id, seq) is silently ignored. Other
// constraint violations still fail.
//
// Note: the run must already exist (foreign key on transitions.run_id).
func (s *Store) RecordTransition(ctx context.Context, t harness.Transition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transitions (run_id, seq, from_state, to_state, detail)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`, t.RunID, t.Seq, t.From.String(), t.To.String(), t.Detail)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

// EndRun stores the outcome on the run row: exit code, final state,
// reported value (NULL when nothing was reported) and the error lines as
// a JSON array. Returns ErrRunNotFound if BeginRun never recorded the
// run.
func (s *Store) EndRun(ctx context.Context, o *harness.Outcome) error {
	errs := o.Errors
	if errs == nil {
		errs = []string{}
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET ended = 1, exit_code = ?, final_state = ?, value = ?, errors = ?
		WHERE run_id = ?
	`, o.ExitCode, o.Final.String(), o.Value, string(errorsJSON), o.RunID)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("end run %s: %w", o.RunID, ErrRunNotFound)
	}
	return nil
}
