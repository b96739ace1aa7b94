package workflow

import (
	"fmt"
	"time"

	"github.com/BaSui01/memeflow/bulk"
	"github.com/BaSui01/memeflow/story"
)

// Stage 表示流水线所处的阶段
type Stage string

const (
	StageInit        Stage = "init"
	StageAnalyzing   Stage = "analyzing"
	StagePreparing   Stage = "preparing"
	StageDispatching Stage = "dispatching"
	StageCollecting  Stage = "collecting"
	StageDone        Stage = "done"
	StageErrored     Stage = "errored"
)

// Terminal 报告该阶段是否为终态
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageErrored
}

// Metadata 记录运行的度量信息
type Metadata struct {
	StartTime      time.Time `json:"start_time"`
	CompletionTime time.Time `json:"completion_time,omitempty"`
	StoryWords     int       `json:"story_words"`
	SessionDir     string    `json:"session_dir,omitempty"`
	Succeeded      int       `json:"succeeded"`
	Failed         int       `json:"failed"`
}

// State 是一次运行的完整状态，随阶段推进而累积字段
type State struct {
	RunID    string                   `json:"run_id"`
	Story    string                   `json:"story"`
	Stage    Stage                    `json:"stage"`
	Points   []story.NarrativePoint   `json:"points,omitempty"`
	Requests []bulk.GenerationRequest `json:"requests,omitempty"`
	Batch    *bulk.BatchResult        `json:"batch,omitempty"`

	// OutputPaths 按序号收集成功写盘的图像路径
	OutputPaths []string `json:"output_paths,omitempty"`

	// Warnings 记录未致命的单项失败
	Warnings []string `json:"warnings,omitempty"`

	Metadata Metadata       `json:"metadata"`
	Err      *PipelineError `json:"error,omitempty"`
}

// PipelineError 标记运行在哪个阶段因何终止
type PipelineError struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline failed at %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("pipeline failed at %s: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// newPipelineError 构造阶段级错误
func newPipelineError(stage Stage, message string, cause error) *PipelineError {
	return &PipelineError{Stage: stage, Message: message, Cause: cause}
}
