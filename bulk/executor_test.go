package bulk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/memeflow/testutil/mocks"
	"github.com/BaSui01/memeflow/types"
)

func newTestExecutor(backend *mocks.MockImageProvider) *Executor {
	return NewExecutor(backend, "mock-model", nil, nil, zap.NewNop())
}

func TestExecutor_GenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "meme_01.png")

	backend := mocks.NewMockImageProvider()
	exec := newTestExecutor(backend)

	result := exec.Execute(context.Background(), 0, NewGenerate("a cat", out))

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, out, result.OutputPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG:a cat"), data)
}

func TestExecutor_Idempotent(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "meme_01.png")
	req := NewGenerate("same prompt", out)

	exec := newTestExecutor(mocks.NewMockImageProvider())

	first := exec.Execute(context.Background(), 0, req)
	require.Equal(t, StatusSuccess, first.Status)
	firstBytes, err := os.ReadFile(out)
	require.NoError(t, err)

	second := exec.Execute(context.Background(), 0, req)
	require.Equal(t, StatusSuccess, second.Status)
	secondBytes, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes)
}

func TestExecutor_BackendFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "meme_01.png")

	backend := mocks.NewMockImageProvider().
		FailOnPrompt("doomed", types.NewError(types.ErrUpstreamError, "backend exploded").WithRetryable(true))
	exec := newTestExecutor(backend)

	result := exec.Execute(context.Background(), 2, NewGenerate("doomed prompt", out))

	assert.Equal(t, StatusFailure, result.Status)
	assert.Empty(t, result.OutputPath)
	assert.Contains(t, result.ErrorDetail, "backend exploded")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "failed request must not leave a file at the output path")
}

func TestExecutor_InterruptedWriteLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	// 让目标目录的位置被一个普通文件占据，模拟写入中途不可完成
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o600))
	out := filepath.Join(blocked, "meme_01.png")

	exec := newTestExecutor(mocks.NewMockImageProvider())
	result := exec.Execute(context.Background(), 0, NewGenerate("a cat", out))

	assert.Equal(t, StatusFailure, result.Status)
	_, err := os.Stat(out)
	assert.Error(t, err, "no file may exist at the output path after an interrupted write")

	// 同目录下也不许残留临时文件
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestExecutor_EditMissingInputFailsFast(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "edited.png")

	backend := mocks.NewMockImageProvider()
	exec := newTestExecutor(backend)

	result := exec.Execute(context.Background(), 0,
		NewEdit("combine", []string{filepath.Join(dir, "missing.png")}, out))

	assert.Equal(t, StatusFailure, result.Status)
	assert.Contains(t, result.ErrorDetail, "source image not found")
	assert.Equal(t, 0, backend.CallCount(), "invalid input must not contact the backend")
}

func TestExecutor_EditReadsInputsInOrder(t *testing.T) {
	dir := t.TempDir()
	in1 := filepath.Join(dir, "a.png")
	in2 := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(in1, []byte("img-a"), 0o600))
	require.NoError(t, os.WriteFile(in2, []byte("img-b"), 0o600))
	out := filepath.Join(dir, "edited.png")

	backend := mocks.NewMockImageProvider()
	exec := newTestExecutor(backend)

	result := exec.Execute(context.Background(), 0, NewEdit("merge these", []string{in1, in2}, out))

	assert.Equal(t, StatusSuccess, result.Status)
	require.Len(t, backend.EditPrompts(), 1)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG:merge these"), data)
}

func TestExecutor_EmptyPromptRejected(t *testing.T) {
	backend := mocks.NewMockImageProvider()
	exec := newTestExecutor(backend)

	result := exec.Execute(context.Background(), 0, NewGenerate("  ", "/tmp/x.png"))

	assert.Equal(t, StatusFailure, result.Status)
	assert.Contains(t, result.ErrorDetail, "prompt is empty")
	assert.Equal(t, 0, backend.CallCount())
}
