// Package journal provides SQLite-backed storage for harness runs.
//
// The journal is append-only and holds two record kinds:
//   - Runs: one row per run, written when the run starts and completed
//     when it ends
//   - Transitions: every state change of a run
//
// # Ordering
//
// All ordering uses the harness's logical sequence numbers, never
// timestamps. Queries order by seq ASC, run_id ASC COLLATE BINARY so that
// reads are identical across replays. A journal reopened by a later
// process resumes its clock after MaxSeq.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000ms
//   - foreign_keys=ON
package journal
