package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcharness/internal/harness"
)

func TestRecorder_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, harness.RunInfo{RunID: "r1", Entry: harness.EntryFull, Seq: 1}))
	steps := []harness.Transition{
		{RunID: "r1", Seq: 2, From: harness.StateUnstarted, To: harness.StateEnvironmentReady, Detail: "/opt/"},
		{RunID: "r1", Seq: 3, From: harness.StateEnvironmentReady, To: harness.StateGraphicsInitFailed},
	}
	for _, st := range steps {
		require.NoError(t, s.RecordTransition(ctx, st))
	}
	out := &harness.Outcome{RunID: "r1", Entry: harness.EntryFull, Final: harness.StateGraphicsInitFailed}
	out.AddError("VCL init failed")
	require.NoError(t, s.EndRun(ctx, out))

	run, err := s.ReadRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, Run{
		RunID:      "r1",
		Entry:      harness.EntryFull,
		StartedSeq: 1,
		Ended:      true,
		ExitCode:   harness.ExitFailure,
		Final:      harness.StateGraphicsInitFailed,
		Errors:     []string{"VCL init failed"},
	}, run)

	trace, err := s.ReadTransitions(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, steps, trace)

	seq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}

func TestRecorder_StoresValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, harness.RunInfo{RunID: "r1", Entry: harness.EntryDirect, Seq: 1}))
	v := 6.0
	require.NoError(t, s.EndRun(ctx, &harness.Outcome{RunID: "r1", Final: harness.StateClosed, Value: &v}))

	run, err := s.ReadRun(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, run.Value)
	assert.Equal(t, 6.0, *run.Value)
	assert.Nil(t, run.Errors)
	assert.Equal(t, harness.ExitSuccess, run.ExitCode)
}

func TestRecordTransition_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginRun(ctx, harness.RunInfo{RunID: "r1", Entry: harness.EntryFull, Seq: 1}))

	tr := harness.Transition{RunID: "r1", Seq: 2, From: harness.StateUnstarted, To: harness.StateEnvironmentReady}
	require.NoError(t, s.RecordTransition(ctx, tr))
	require.NoError(t, s.RecordTransition(ctx, tr))

	trace, err := s.ReadTransitions(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, trace, 1)
}

func TestRecordTransition_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	err := s.RecordTransition(context.Background(), harness.Transition{RunID: "ghost", Seq: 1})
	assert.Error(t, err, "foreign key on run_id")
}

func TestBeginRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	info := harness.RunInfo{RunID: "r1", Entry: harness.EntryFull, Seq: 1}

	require.NoError(t, s.BeginRun(ctx, info))
	assert.Error(t, s.BeginRun(ctx, info))
}

func TestEndRun_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	err := s.EndRun(context.Background(), &harness.Outcome{RunID: "ghost"})
	assert.ErrorIs(t, err, ErrRunNotFound)
}
