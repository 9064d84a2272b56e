package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/calcharness/internal/harness"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a journaled run. Ended is false for a run whose process died
// before EndRun; the outcome fields are then zero.
type Run struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Entry      harness.Entry `json:"entry" yaml:"entry"`
	StartedSeq int64         `json:"started_seq" yaml:"started_seq"`
	Ended      bool          `json:"ended" yaml:"ended"`
	ExitCode   int           `json:"exit_code" yaml:"exit_code"`
	Final      harness.State `json:"final_state" yaml:"final_state"`
	Value      *float64      `json:"value,omitempty" yaml:"value,omitempty"`
	Errors     []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

const runColumns = `run_id, entry, started_seq, ended, exit_code, final_state, value, errors`

func scanRun(row rowScanner) (Run, error) {
	var (
		r          Run
		entry      string
		ended      int
		exitCode   sql.NullInt64
		finalState sql.NullString
		value      sql.NullFloat64
		errorsJSON string
	)
	if err := row.Scan(&r.RunID, &entry, &r.StartedSeq, &ended, &exitCode, &finalState, &value, &errorsJSON); err != nil {
		return Run{}, err
	}

	r.Entry = harness.Entry(entry)
	r.Ended = ended != 0
	r.ExitCode = int(exitCode.Int64)
	if finalState.Valid {
		st, err := harness.ParseState(finalState.String)
		if err != nil {
			return Run{}, fmt.Errorf("run %s: %w", r.RunID, err)
		}
		r.Final = st
	}
	if value.Valid {
		v := value.Float64
		r.Value = &v
	}
	if err := json.Unmarshal([]byte(errorsJSON), &r.Errors); err != nil {
		return Run{}, fmt.Errorf("run %s errors: %w", r.RunID, err)
	}
	if len(r.Errors) == 0 {
		r.Errors = nil
	}
	return r, nil
}

// ReadRun returns one run.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}
	return r, nil
}

// ListRuns returns every run, oldest first. Returns an empty slice, not
// nil, for an empty journal.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_seq ASC, run_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_seq DESC, run_id COLLATE BINARY DESC
		LIMIT 1
	`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// ReadTransitions returns a run's transitions ordered by seq. Returns an
// empty slice, not nil, when the run recorded none.
func (s *Store) ReadTransitions(ctx context.Context, runID string) ([]harness.Transition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, from_state, to_state, detail
		FROM transitions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	trace := []harness.Transition{}
	for rows.Next() {
		var (
			t        harness.Transition
			from, to string
		)
		if err := rows.Scan(&t.RunID, &t.Seq, &from, &to, &t.Detail); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if t.From, err = harness.ParseState(from); err != nil {
			return nil, fmt.Errorf("transition %d: %w", t.Seq, err)
		}
		if t.To, err = harness.ParseState(to); err != nil {
			return nil, fmt.Errorf("transition %d: %w", t.Seq, err)
		}
		trace = append(trace, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return trace, nil
}
