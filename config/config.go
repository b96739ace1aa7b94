package config

import (
	"strings"
	"time"

	"github.com/BaSui01/memeflow/types"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 MemeFlow 的完整配置结构
// 启动时构造一次，按引用传递给执行器和工作流控制器
type Config struct {
	// OpenAI API 凭证与端点配置
	OpenAI OpenAIConfig `yaml:"openai" env:"OPENAI"`

	// Image 图像生成配置
	Image ImageConfig `yaml:"image" env:"IMAGE"`

	// Pipeline 流水线配置
	Pipeline PipelineConfig `yaml:"pipeline" env:"PIPELINE"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`
}

// OpenAIConfig OpenAI 凭证与聊天模型配置
type OpenAIConfig struct {
	// API Key（必填）
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 组织 ID（可选）
	Organization string `yaml:"organization" env:"ORGANIZATION"`
	// 基础 URL
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 叙事分析使用的聊天模型
	ChatModel string `yaml:"chat_model" env:"CHAT_MODEL"`
	// 单次请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// ImageConfig 图像生成配置
type ImageConfig struct {
	// 图像模型标识（默认跟随服务商默认值）
	Model string `yaml:"model" env:"MODEL"`
	// 单次请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 每秒请求数上限（0 表示不限）
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
}

// PipelineConfig 流水线配置
type PipelineConfig struct {
	// 批量派发的最大并发数
	MaxConcurrency int `yaml:"max_concurrency" env:"MAX_CONCURRENCY"`
	// 单项失败后的重试次数（0 表示不重试，重试策略属于调用方）
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// 生成图像的输出根目录，每次运行在其下创建会话目录
	OutputRoot string `yaml:"output_root" env:"OUTPUT_ROOT"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// MaxWorkers 远端 API 有未公开的速率限制，并发上限钳制在 [1, 10]
const MaxWorkers = 10

// Validate 验证配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return types.NewError(types.ErrMissingCredential,
			"OpenAI API key is not set (config openai.api_key or OPENAI_API_KEY)")
	}

	var errs []string
	if c.Pipeline.MaxConcurrency < 0 {
		errs = append(errs, "max_concurrency must not be negative")
	}
	if c.Pipeline.MaxRetries < 0 {
		errs = append(errs, "max_retries must not be negative")
	}
	if c.Image.RateLimitRPS < 0 {
		errs = append(errs, "rate_limit_rps must not be negative")
	}
	if len(errs) > 0 {
		return types.NewError(types.ErrPipeline,
			"config validation errors: "+strings.Join(errs, "; "))
	}
	return nil
}

// Normalize 纠正越界值：并发数钳制在 [1, MaxWorkers]
func (c *Config) Normalize() {
	if c.Pipeline.MaxConcurrency <= 0 {
		c.Pipeline.MaxConcurrency = MaxWorkers
	}
	if c.Pipeline.MaxConcurrency > MaxWorkers {
		c.Pipeline.MaxConcurrency = MaxWorkers
	}
}
