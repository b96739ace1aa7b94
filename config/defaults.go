// =============================================================================
// 📦 MemeFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		OpenAI:   DefaultOpenAIConfig(),
		Image:    DefaultImageConfig(),
		Pipeline: DefaultPipelineConfig(),
		Log:      DefaultLogConfig(),
	}
}

// DefaultOpenAIConfig 返回默认 OpenAI 配置
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL:   "https://api.openai.com",
		ChatModel: "gpt-4o",
		Timeout:   60 * time.Second,
	}
}

// DefaultImageConfig 返回默认图像生成配置
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		Model:   "gpt-image-1",
		Timeout: 120 * time.Second,
	}
}

// DefaultPipelineConfig 返回默认流水线配置
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxConcurrency: MaxWorkers,
		MaxRetries:     0,
		OutputRoot:     "generated_images",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "console",
	}
}
