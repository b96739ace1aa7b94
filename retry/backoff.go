// Package retry 提供可组合的指数退避重试能力。
//
// 批量派发器自身从不重试；重试策略属于调用方，
// 通过在执行器上配置 Policy 显式启用（默认关闭）。
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/memeflow/types"
)

// Policy 定义重试策略配置
type Policy struct {
	MaxRetries   int           // 最大重试次数（0 表示不重试）
	InitialDelay time.Duration // 初始延迟时间
	MaxDelay     time.Duration // 最大延迟时间
	Multiplier   float64       // 延迟时间倍增因子（指数退避）
	Jitter       bool          // 是否添加随机抖动（防止雪崩）
}

// DefaultPolicy 返回默认的重试策略
// 适用于大部分远端图像 API 调用场景
func DefaultPolicy() *Policy {
	return &Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Retryer 重试器接口
type Retryer interface {
	// Do 执行函数，失败且错误可重试时根据策略重试
	Do(ctx context.Context, fn func() error) error
}

// backoffRetryer 基于指数退避的重试器实现
type backoffRetryer struct {
	policy *Policy
	logger *zap.Logger
}

// NewBackoffRetryer 创建指数退避重试器
func NewBackoffRetryer(policy *Policy, logger *zap.Logger) Retryer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// 参数校验
	p := *policy
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 1 * time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier < 1.0 {
		p.Multiplier = 2.0
	}

	return &backoffRetryer{policy: &p, logger: logger}
}

// Do 实现 Retryer.Do
// 核心重试逻辑：指数退避 + 随机抖动 + 可重试错误过滤
func (r *backoffRetryer) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		// 第一次执行不延迟
		if attempt > 0 {
			delay := r.calculateDelay(attempt)

			r.logger.Debug("retrying after backoff",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", r.policy.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)

			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		// 不可重试的错误立即返回（如 INVALID_INPUT、AUTHENTICATION）
		if !types.IsRetryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// calculateDelay 计算第 attempt 次重试的延迟
func (r *backoffRetryer) calculateDelay(attempt int) time.Duration {
	delay := float64(r.policy.InitialDelay) * math.Pow(r.policy.Multiplier, float64(attempt-1))
	if delay > float64(r.policy.MaxDelay) {
		delay = float64(r.policy.MaxDelay)
	}
	if r.policy.Jitter {
		// 0.5x ~ 1.5x 抖动
		delay = delay * (0.5 + rand.Float64())
	}
	return time.Duration(delay)
}

// NoRetry 返回直接执行、从不重试的重试器
func NoRetry() Retryer {
	return noRetryer{}
}

type noRetryer struct{}

func (noRetryer) Do(_ context.Context, fn func() error) error { return fn() }
