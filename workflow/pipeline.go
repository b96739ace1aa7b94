package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/memeflow/bulk"
	"github.com/BaSui01/memeflow/config"
	"github.com/BaSui01/memeflow/story"
)

// Analyzer 将故事文本拆解为固定数量的叙事节点
type Analyzer interface {
	Analyze(ctx context.Context, storyText string) ([]story.NarrativePoint, error)
}

// BatchDispatcher 并发执行一批图像请求并返回逐项结果
type BatchDispatcher interface {
	Dispatch(ctx context.Context, requests []bulk.GenerationRequest) bulk.BatchResult
}

// Analysis 汇总叙事分析的产出
type Analysis struct {
	Points     []story.NarrativePoint `json:"points"`
	StoryWords int                    `json:"story_words"`
	NumImages  int                    `json:"num_images"`
}

// Result 是一次运行面向调用方的最终产物
type Result struct {
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	ImagePaths []string  `json:"image_paths"`
	SessionDir string    `json:"session_dir,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
	Analysis   *Analysis `json:"analysis,omitempty"`
}

// Pipeline 驱动故事到表情包序列的完整运行
type Pipeline struct {
	analyzer   Analyzer
	dispatcher BatchDispatcher
	cfg        config.PipelineConfig
	store      Store
	logger     *zap.Logger
	now        func() time.Time
}

// NewPipeline 创建流水线。store 为 nil 时使用内存快照存储
func NewPipeline(analyzer Analyzer, dispatcher BatchDispatcher, cfg config.PipelineConfig, store Store, logger *zap.Logger) *Pipeline {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		analyzer:   analyzer,
		dispatcher: dispatcher,
		cfg:        cfg,
		store:      store,
		logger:     logger.With(zap.String("component", "pipeline")),
		now:        time.Now,
	}
}

// stageFunc 推进一个阶段，就地修改状态
type stageFunc func(ctx context.Context, st *State) error

// Run 执行一次完整运行并返回结果。
// 阶段级失败返回 *PipelineError；个别图像失败不构成错误，
// 只在结果与状态的 Warnings 中体现。
func (p *Pipeline) Run(ctx context.Context, storyText string) (*Result, error) {
	st := &State{
		RunID: uuid.NewString(),
		Story: storyText,
		Stage: StageInit,
		Metadata: Metadata{
			StartTime:  p.now(),
			StoryWords: len(strings.Fields(storyText)),
		},
	}
	p.checkpoint(ctx, st)

	stages := []struct {
		stage Stage
		fn    stageFunc
	}{
		{StageAnalyzing, p.analyze},
		{StagePreparing, p.prepare},
		{StageDispatching, p.dispatch},
		{StageCollecting, p.collect},
	}

	for _, s := range stages {
		st.Stage = s.stage
		if err := s.fn(ctx, st); err != nil {
			perr, ok := err.(*PipelineError)
			if !ok {
				perr = newPipelineError(s.stage, "stage failed", err)
			}
			st.Stage = StageErrored
			st.Err = perr
			st.Metadata.CompletionTime = p.now()
			p.checkpoint(ctx, st)
			p.logger.Error("run failed",
				zap.String("run_id", st.RunID),
				zap.String("stage", string(perr.Stage)),
				zap.Error(perr),
			)
			return p.result(st), perr
		}
		p.checkpoint(ctx, st)
	}

	st.Stage = StageDone
	st.Metadata.CompletionTime = p.now()
	p.checkpoint(ctx, st)

	p.logger.Info("run completed",
		zap.String("run_id", st.RunID),
		zap.Int("succeeded", st.Metadata.Succeeded),
		zap.Int("failed", st.Metadata.Failed),
		zap.Duration("elapsed", st.Metadata.CompletionTime.Sub(st.Metadata.StartTime)),
	)
	return p.result(st), nil
}

// analyze 调用叙事分析并校验节点数量
func (p *Pipeline) analyze(ctx context.Context, st *State) error {
	p.logger.Info("analyzing narrative structure",
		zap.String("run_id", st.RunID),
		zap.Int("story_words", st.Metadata.StoryWords),
	)

	points, err := p.analyzer.Analyze(ctx, st.Story)
	if err != nil {
		return newPipelineError(StageAnalyzing, "narrative analysis failed", err)
	}
	// 节点数量在控制器边界再次把关，不信任协作方的返回
	if len(points) != story.NumMemes {
		return newPipelineError(StageAnalyzing,
			fmt.Sprintf("expected %d narrative points, got %d", story.NumMemes, len(points)), nil)
	}
	st.Points = points
	return nil
}

// prepare 建立会话目录并把叙事节点物化为生成请求
func (p *Pipeline) prepare(ctx context.Context, st *State) error {
	sessionDir := filepath.Join(p.cfg.OutputRoot, "session_"+p.now().Format("20060102_150405"))
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return newPipelineError(StagePreparing, "failed to create session directory", err)
	}
	st.Metadata.SessionDir = sessionDir

	requests := make([]bulk.GenerationRequest, 0, len(st.Points))
	for i, pt := range st.Points {
		outputPath := filepath.Join(sessionDir, fmt.Sprintf("meme_%02d.png", i+1))
		requests = append(requests, bulk.NewGenerate(story.BuildMemePrompt(pt), outputPath))
	}
	st.Requests = requests

	p.logger.Info("prepared generation requests",
		zap.String("run_id", st.RunID),
		zap.String("session_dir", sessionDir),
		zap.Int("requests", len(requests)),
	)
	return nil
}

// dispatch 把整批请求交给派发器；派发器本身从不返回错误
func (p *Pipeline) dispatch(ctx context.Context, st *State) error {
	p.logger.Info("dispatching image requests",
		zap.String("run_id", st.RunID),
		zap.Int("items", len(st.Requests)),
	)

	batch := p.dispatcher.Dispatch(ctx, st.Requests)
	st.Batch = &batch
	return nil
}

// collect 汇总批次结果。全部失败才视为运行失败
func (p *Pipeline) collect(ctx context.Context, st *State) error {
	batch := st.Batch
	st.Metadata.Succeeded = batch.Succeeded
	st.Metadata.Failed = batch.Failed
	st.OutputPaths = batch.OutputPaths()
	st.Warnings = batch.FailureReasons()

	if len(batch.Results) > 0 && batch.Failed == len(batch.Results) {
		return newPipelineError(StageCollecting,
			fmt.Sprintf("all %d items failed", len(batch.Results)), nil)
	}

	for _, w := range st.Warnings {
		p.logger.Warn("item failed", zap.String("run_id", st.RunID), zap.String("detail", w))
	}
	return nil
}

// checkpoint 在每次阶段转换后保存快照；保存失败不影响运行
func (p *Pipeline) checkpoint(ctx context.Context, st *State) {
	// 快照持有状态的副本，后续阶段的修改不回写到已保存的快照
	stateCopy := *st
	snapshot := &Snapshot{
		RunID:     st.RunID,
		Stage:     st.Stage,
		State:     &stateCopy,
		CreatedAt: p.now(),
	}
	if err := p.store.Save(ctx, snapshot); err != nil {
		p.logger.Warn("failed to save snapshot",
			zap.String("run_id", st.RunID),
			zap.String("stage", string(st.Stage)),
			zap.Error(err),
		)
	}
}

// result 把终态 State 折叠为调用方结果
func (p *Pipeline) result(st *State) *Result {
	r := &Result{
		Success:    st.Stage == StageDone,
		ImagePaths: st.OutputPaths,
		SessionDir: st.Metadata.SessionDir,
		Warnings:   st.Warnings,
	}
	if r.ImagePaths == nil {
		r.ImagePaths = []string{}
	}
	if st.Err != nil {
		r.Error = st.Err.Error()
	}
	if len(st.Points) > 0 {
		r.Analysis = &Analysis{
			Points:     st.Points,
			StoryWords: st.Metadata.StoryWords,
			NumImages:  len(r.ImagePaths),
		}
	}
	return r
}
