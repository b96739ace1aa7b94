package bulk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/memeflow/internal/metrics"
	"github.com/BaSui01/memeflow/llm/image"
	"github.com/BaSui01/memeflow/retry"
	"github.com/BaSui01/memeflow/types"
)

// Executor 执行单个图像请求：校验 → 后端调用 → 原子写盘
// 所有失败都被捕获为结果数据，绝不越过该边界向上传播
type Executor struct {
	backend image.Provider
	model   string
	retryer retry.Retryer
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewExecutor 创建执行器
// retryer 为 nil 时不重试（重试策略属于调用方）
func NewExecutor(backend image.Provider, model string, retryer retry.Retryer, collector *metrics.Collector, logger *zap.Logger) *Executor {
	if retryer == nil {
		retryer = retry.NoRetry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		backend: backend,
		model:   model,
		retryer: retryer,
		metrics: collector,
		logger:  logger,
	}
}

// Execute 执行一个请求并返回结果记录
// 副作用仅限一次网络调用和一次文件写入，不触碰任何共享可变状态
func (e *Executor) Execute(ctx context.Context, index int, req GenerationRequest) RequestResult {
	if err := req.Validate(); err != nil {
		return e.failure(index, err)
	}

	var refs []image.NamedImage
	if req.Kind == KindEdit {
		// 任一参考图缺失则快速失败，不接触后端
		loaded, err := loadReferenceImages(req.InputPaths)
		if err != nil {
			return e.failure(index, err)
		}
		refs = loaded
	}

	var img *image.Image
	start := time.Now()
	err := e.retryer.Do(ctx, func() error {
		var callErr error
		switch req.Kind {
		case KindGenerate:
			img, callErr = e.backend.Generate(ctx, &image.GenerateRequest{
				Prompt: req.Prompt,
				Model:  e.model,
			})
		case KindEdit:
			img, callErr = e.backend.Edit(ctx, &image.EditRequest{
				Prompt: req.Prompt,
				Model:  e.model,
				Images: refs,
			})
		}
		return callErr
	})
	e.metrics.RecordRequestDuration(time.Since(start))

	if err != nil {
		return e.failure(index, err)
	}

	if err := writeFileAtomic(req.OutputPath, img.Bytes); err != nil {
		return e.failure(index, err)
	}

	e.metrics.RecordImageGenerated()
	e.logger.Debug("image request complete",
		zap.Int("index", index),
		zap.String("kind", string(req.Kind)),
		zap.String("output", req.OutputPath),
	)

	return RequestResult{
		Index:      index,
		OutputPath: req.OutputPath,
		Status:     StatusSuccess,
	}
}

// failure 把错误转换为失败结果并记录
// 失败结果不携带输出路径：失败时目标路径上不存在文件
func (e *Executor) failure(index int, err error) RequestResult {
	code := types.GetErrorCode(err)
	if code == "" {
		code = types.ErrBackendFailure
	}
	e.metrics.RecordImageFailed(string(code))
	e.logger.Warn("image request failed",
		zap.Int("index", index),
		zap.String("code", string(code)),
		zap.Error(err),
	)
	return RequestResult{
		Index:       index,
		Status:      StatusFailure,
		ErrorDetail: err.Error(),
	}
}

// loadReferenceImages 按序读入参考图，任一路径不可读立即失败
func loadReferenceImages(paths []string) ([]image.NamedImage, error) {
	refs := make([]image.NamedImage, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, types.NewError(types.ErrInvalidInput,
				fmt.Sprintf("source image not found: %s", p)).WithCause(err)
		}
		refs = append(refs, image.NamedImage{Name: filepath.Base(p), Bytes: data})
	}
	return refs, nil
}

// writeFileAtomic 先写同目录临时文件再重命名
// 写入中途崩溃不会在目标路径留下截断文件
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.NewError(types.ErrBackendFailure,
			"failed to create output directory: "+dir).WithCause(err)
	}

	tmp, err := os.CreateTemp(dir, ".memeflow-*.tmp")
	if err != nil {
		return types.NewError(types.ErrBackendFailure,
			"failed to create temp file in "+dir).WithCause(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.NewError(types.ErrBackendFailure,
			"failed to write image data").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.NewError(types.ErrBackendFailure,
			"failed to flush image data").WithCause(err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return types.NewError(types.ErrBackendFailure,
			"failed to move image into place").WithCause(err)
	}
	return nil
}
