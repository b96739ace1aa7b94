package bulk

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/memeflow/internal/metrics"
)

// DefaultMaxConcurrency 默认并发上限
// 远端 API 有未公开的速率限制，超出会换来一片 RATE_LIMIT 失败而非致命错误
const DefaultMaxConcurrency = 10

// Dispatcher 把一批异构请求并发派发给执行器
//
// 保证：每个请求恰好尝试一次；单项失败不影响其他项；
// 返回的 BatchResult 始终按提交顺序排列，与完成顺序无关。
// 派发后不支持中途取消——已发出的调用跑到各自终态，
// 避免在远端留下计费语义未知的孤儿请求。
type Dispatcher struct {
	executor       *Executor
	maxConcurrency int
	metrics        *metrics.Collector
	logger         *zap.Logger
}

// NewDispatcher 创建派发器，maxConcurrency <= 0 时取默认值
func NewDispatcher(executor *Executor, maxConcurrency int, collector *metrics.Collector, logger *zap.Logger) *Dispatcher {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		executor:       executor,
		maxConcurrency: maxConcurrency,
		metrics:        collector,
		logger:         logger,
	}
}

// Dispatch 并发执行整批请求并按提交顺序聚合结果
// 空输入立即返回空结果，不接触后端
func (d *Dispatcher) Dispatch(ctx context.Context, requests []GenerationRequest) BatchResult {
	if len(requests) == 0 {
		return BatchResult{Results: []RequestResult{}}
	}

	d.metrics.RecordBatch(len(requests))

	results := make([]RequestResult, len(requests))

	// 同一批次内输出路径必须唯一，重复项在派发前判失败
	seen := make(map[string]int, len(requests))
	skip := make([]bool, len(requests))
	for i, req := range requests {
		if first, dup := seen[req.OutputPath]; dup && req.OutputPath != "" {
			skip[i] = true
			results[i] = RequestResult{
				Index:  i,
				Status: StatusFailure,
				ErrorDetail: fmt.Sprintf("[INVALID_INPUT] output path %q duplicates item %d",
					req.OutputPath, first+1),
			}
			continue
		}
		seen[req.OutputPath] = i
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrency)

	for i := range requests {
		if skip[i] {
			continue
		}
		i := i
		g.Go(func() error {
			// 执行器把一切失败转换为结果数据，worker 永远返回 nil，
			// 因此不会有任何一项触发兄弟项的取消
			results[i] = d.executor.Execute(gctx, i, requests[i])
			return nil
		})
	}
	_ = g.Wait()

	batch := BatchResult{Results: results}
	for _, r := range results {
		if r.Status == StatusSuccess {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	d.logger.Info("batch dispatch complete",
		zap.Int("items", len(requests)),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed),
		zap.Int("max_concurrency", d.maxConcurrency),
	)
	return batch
}
