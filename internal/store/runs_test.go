package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.LastStatefulRun(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRuns_Lifecycle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, "run-1"))
	require.NoError(t, s.FinishRun(ctx, RunRecord{ID: "run-1", Status: RunSucceeded, Items: 4, Written: 2}))
	require.NoError(t, s.BeginRun(ctx, "run-2"))

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, RunStarted, runs[0].Status)
	assert.Equal(t, RunRecord{Seq: 1, ID: "run-1", Status: RunSucceeded, Items: 4, Written: 2}, runs[1])
}

func TestRuns_FinishUnknown(t *testing.T) {
	s := createTestStore(t)
	err := s.FinishRun(context.Background(), RunRecord{ID: "nope", Status: RunFailed})
	assert.ErrorContains(t, err, "unknown run")
}

func TestRuns_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, "same"))
	assert.Error(t, s.BeginRun(ctx, "same"))
}

func TestRuns_LastStatefulSkipsUntouchedFailures(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, "ok"))
	require.NoError(t, s.FinishRun(ctx, RunRecord{ID: "ok", Status: RunSucceeded, Items: 1}))
	require.NoError(t, s.BeginRun(ctx, "cycle"))
	require.NoError(t, s.FinishRun(ctx, RunRecord{ID: "cycle", Status: RunFailed, Error: "cycle"}))

	last, ok, err := s.LastStatefulRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ok", last.ID)
	assert.False(t, last.Touched)
}

func TestRuns_LastStatefulReturnsTouchedFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, "ok"))
	require.NoError(t, s.FinishRun(ctx, RunRecord{ID: "ok", Status: RunSucceeded}))
	require.NoError(t, s.BeginRun(ctx, "broken"))
	require.NoError(t, s.MarkTouched(ctx, "broken"))
	require.NoError(t, s.FinishRun(ctx, RunRecord{ID: "broken", Status: RunFailed, Error: "boom"}))

	last, ok, err := s.LastStatefulRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "broken", last.ID)
	assert.Equal(t, RunFailed, last.Status)
	assert.True(t, last.Touched, "finishing a run keeps its touched flag")
}

func TestRuns_MarkTouchedUnknown(t *testing.T) {
	s := createTestStore(t)
	err := s.MarkTouched(context.Background(), "nope")
	assert.ErrorContains(t, err, "unknown run")
}
