package workflow

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := &Snapshot{RunID: "run-1", Stage: StageInit, State: &State{RunID: "run-1", Stage: StageInit}, CreatedAt: time.Now()}
	second := &Snapshot{RunID: "run-1", Stage: StageAnalyzing, State: &State{RunID: "run-1", Stage: StageAnalyzing}, CreatedAt: time.Now()}

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	latest, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StageAnalyzing, latest.Stage)

	all, err := store.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, StageInit, all[0].Stage)
	assert.Equal(t, StageAnalyzing, all[1].Stage)
}

func TestMemoryStore_IsolatesRuns(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Snapshot{RunID: "run-a", Stage: StageDone, State: &State{}}))
	require.NoError(t, store.Save(ctx, &Snapshot{RunID: "run-b", Stage: StageErrored, State: &State{}}))

	a, err := store.Load(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, StageDone, a.Stage)

	b, err := store.Load(ctx, "run-b")
	require.NoError(t, err)
	assert.Equal(t, StageErrored, b.Stage)
}

func TestMemoryStore_LoadUnknownRun(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load(context.Background(), "nope")
	assert.Error(t, err)

	list, err := store.List(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_RejectsEmptyRunID(t *testing.T) {
	store := NewMemoryStore()

	assert.Error(t, store.Save(context.Background(), &Snapshot{}))
	assert.Error(t, store.Save(context.Background(), nil))
}

func TestSnapshot_MarshalRoundTrip(t *testing.T) {
	snap := &Snapshot{
		RunID: "run-1",
		Stage: StageDone,
		State: &State{
			RunID:       "run-1",
			Stage:       StageDone,
			OutputPaths: []string{"/tmp/meme_01.png"},
			Metadata:    Metadata{Succeeded: 1},
		},
		CreatedAt: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
	}

	data, err := snap.Marshal()
	require.NoError(t, err)

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, snap.RunID, restored.RunID)
	assert.Equal(t, snap.Stage, restored.Stage)
	require.NotNil(t, restored.State)
	assert.Equal(t, snap.State.OutputPaths, restored.State.OutputPaths)
	assert.Equal(t, 1, restored.State.Metadata.Succeeded)
}
