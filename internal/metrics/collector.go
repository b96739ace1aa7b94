// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
// 所有方法对 nil 接收者安全，未接入指标的调用路径无需判空
type Collector struct {
	// 图像请求指标
	imagesGenerated prometheus.Counter
	imagesFailed    *prometheus.CounterVec
	requestDuration prometheus.Histogram

	// 批量派发指标
	batchItems prometheus.Histogram

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.imagesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_generated_total",
			Help:      "Total number of images successfully generated and written",
		},
	)

	c.imagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_failed_total",
			Help:      "Total number of failed image requests by error code",
		},
		[]string{"code"},
	)

	c.requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of remote image backend calls",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	c.batchItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_items",
			Help:      "Number of items per dispatched batch",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		},
	)

	return c
}

// RecordImageGenerated 记录一次成功生成
func (c *Collector) RecordImageGenerated() {
	if c == nil {
		return
	}
	c.imagesGenerated.Inc()
}

// RecordImageFailed 按错误码记录一次失败
func (c *Collector) RecordImageFailed(code string) {
	if c == nil {
		return
	}
	if code == "" {
		code = "UNKNOWN"
	}
	c.imagesFailed.WithLabelValues(code).Inc()
}

// RecordRequestDuration 记录一次后端调用耗时
func (c *Collector) RecordRequestDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.Observe(d.Seconds())
}

// RecordBatch 记录一次批量派发的条目数
func (c *Collector) RecordBatch(items int) {
	if c == nil {
		return
	}
	c.batchItems.Observe(float64(items))
}
