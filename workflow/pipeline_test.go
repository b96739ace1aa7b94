package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/memeflow/bulk"
	"github.com/BaSui01/memeflow/config"
	"github.com/BaSui01/memeflow/story"
	"github.com/BaSui01/memeflow/testutil/mocks"
	"github.com/BaSui01/memeflow/types"
)

// stubAnalyzer 返回固定的叙事节点或错误
type stubAnalyzer struct {
	points []story.NarrativePoint
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, storyText string) ([]story.NarrativePoint, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.points, nil
}

func ninePoints() []story.NarrativePoint {
	points := make([]story.NarrativePoint, story.NumMemes)
	for i := range points {
		points[i] = story.NarrativePoint{
			Visual:  fmt.Sprintf("scene #%02d of the hero's journey", i),
			Caption: fmt.Sprintf("caption %d", i),
		}
	}
	return points
}

func newTestPipeline(t *testing.T, analyzer Analyzer, backend *mocks.MockImageProvider, store Store) *Pipeline {
	t.Helper()
	exec := bulk.NewExecutor(backend, "mock-model", nil, nil, zap.NewNop())
	dispatcher := bulk.NewDispatcher(exec, config.MaxWorkers, nil, zap.NewNop())
	cfg := config.PipelineConfig{
		MaxConcurrency: config.MaxWorkers,
		OutputRoot:     t.TempDir(),
	}
	return NewPipeline(analyzer, dispatcher, cfg, store, zap.NewNop())
}

func TestPipeline_FullSuccess(t *testing.T) {
	analyzer := &stubAnalyzer{points: ninePoints()}
	backend := mocks.NewMockImageProvider()
	store := NewMemoryStore()
	p := newTestPipeline(t, analyzer, backend, store)

	result, err := p.Run(context.Background(), "a hero leaves home and returns changed")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	require.Len(t, result.ImagePaths, 9)
	assert.Equal(t, 9, backend.CallCount())

	for i, path := range result.ImagePaths {
		assert.Equal(t, fmt.Sprintf("meme_%02d.png", i+1), filepath.Base(path))
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr, "image %d must exist on disk", i+1)
	}

	require.NotNil(t, result.Analysis)
	assert.Len(t, result.Analysis.Points, 9)
	assert.NotEmpty(t, result.SessionDir)
	assert.Contains(t, filepath.Base(result.SessionDir), "session_")
}

func TestPipeline_SnapshotSequence(t *testing.T) {
	analyzer := &stubAnalyzer{points: ninePoints()}
	store := NewMemoryStore()
	p := newTestPipeline(t, analyzer, mocks.NewMockImageProvider(), store)

	result, err := p.Run(context.Background(), "story")
	require.NoError(t, err)
	require.True(t, result.Success)

	snapshots, err := store.List(context.Background(), runIDFrom(t, store))
	require.NoError(t, err)

	want := []Stage{StageInit, StageAnalyzing, StagePreparing, StageDispatching, StageCollecting, StageDone}
	require.Len(t, snapshots, len(want))
	for i, s := range snapshots {
		assert.Equal(t, want[i], s.Stage)
		assert.Equal(t, want[i], s.State.Stage, "snapshot state must be frozen at its own stage")
	}

	// 终态快照可序列化
	data, err := snapshots[len(snapshots)-1].Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"done"`)
}

func TestPipeline_AnalysisFailureStopsBeforeDispatch(t *testing.T) {
	analyzer := &stubAnalyzer{
		err: types.NewError(types.ErrInvalidResponse, "expected 9 narrative points, got 7"),
	}
	backend := mocks.NewMockImageProvider()
	store := NewMemoryStore()
	p := newTestPipeline(t, analyzer, backend, store)

	result, err := p.Run(context.Background(), "a very short story")

	require.Error(t, err)
	var perr *PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageAnalyzing, perr.Stage)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "narrative analysis failed")
	assert.Empty(t, result.ImagePaths)
	assert.Equal(t, 0, backend.CallCount(), "no image request may be dispatched after analysis failure")

	last, loadErr := store.Load(context.Background(), runIDFrom(t, store))
	require.NoError(t, loadErr)
	assert.Equal(t, StageErrored, last.Stage)
}

func TestPipeline_AllItemsFailed(t *testing.T) {
	analyzer := &stubAnalyzer{points: ninePoints()}
	backend := mocks.NewMockImageProvider().
		FailOnPrompt("scene", types.NewError(types.ErrUpstreamError, "backend down").WithRetryable(true))
	store := NewMemoryStore()
	p := newTestPipeline(t, analyzer, backend, store)

	result, err := p.Run(context.Background(), "story")

	require.Error(t, err)
	var perr *PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageCollecting, perr.Stage)
	assert.Contains(t, err.Error(), "all 9 items failed")

	assert.False(t, result.Success)
	assert.Empty(t, result.ImagePaths)
	assert.NotEmpty(t, result.SessionDir)

	// 会话目录存在但没有任何图像文件
	entries, readErr := os.ReadDir(result.SessionDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestPipeline_PartialFailureCompletes(t *testing.T) {
	analyzer := &stubAnalyzer{points: ninePoints()}
	backend := mocks.NewMockImageProvider().
		FailOnPrompt("scene #03", types.NewError(types.ErrRateLimit, "slow down").WithRetryable(true)).
		FailOnPrompt("scene #07", types.NewError(types.ErrBackendFailure, "oops"))
	store := NewMemoryStore()
	p := newTestPipeline(t, analyzer, backend, store)

	result, err := p.Run(context.Background(), "story")

	require.NoError(t, err, "partial failure must still complete the run")
	assert.True(t, result.Success)
	assert.Len(t, result.ImagePaths, 7)
	assert.Len(t, result.Warnings, 2)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, 7, result.Analysis.NumImages)

	last, loadErr := store.Load(context.Background(), runIDFrom(t, store))
	require.NoError(t, loadErr)
	assert.Equal(t, StageDone, last.Stage)
	assert.Len(t, last.State.Warnings, 2)
	assert.Equal(t, 7, last.State.Metadata.Succeeded)
	assert.Equal(t, 2, last.State.Metadata.Failed)
}

func TestPipeline_WrongPointCountErrorsAtAnalyzing(t *testing.T) {
	cases := []struct {
		name   string
		points []story.NarrativePoint
	}{
		{"zero points", []story.NarrativePoint{}},
		{"seven points", ninePoints()[:7]},
		{"ten points", append(ninePoints(), story.NarrativePoint{Visual: "extra", Caption: "extra"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// 协作方返回错误数量的节点且不报错，控制器必须自行把关
			analyzer := &stubAnalyzer{points: tc.points}
			backend := mocks.NewMockImageProvider()
			store := NewMemoryStore()
			p := newTestPipeline(t, analyzer, backend, store)

			result, err := p.Run(context.Background(), "story")

			require.Error(t, err)
			var perr *PipelineError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, StageAnalyzing, perr.Stage)
			assert.Contains(t, perr.Message, fmt.Sprintf("got %d", len(tc.points)))

			assert.False(t, result.Success)
			assert.Empty(t, result.ImagePaths)
			assert.Equal(t, 0, backend.CallCount(), "no request may be dispatched on a count mismatch")

			last, loadErr := store.Load(context.Background(), runIDFrom(t, store))
			require.NoError(t, loadErr)
			assert.Equal(t, StageErrored, last.Stage)
		})
	}
}

// runIDFrom 取出存储中唯一一次运行的 ID
func runIDFrom(t *testing.T, store *MemoryStore) string {
	t.Helper()
	store.mu.RLock()
	defer store.mu.RUnlock()
	require.Len(t, store.snapshots, 1)
	for id := range store.snapshots {
		return id
	}
	return ""
}
