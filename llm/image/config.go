package image

import "time"

// OpenAIConfig 配置 OpenAI 图像提供者
type OpenAIConfig struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	Organization string        `json:"organization,omitempty" yaml:"organization,omitempty"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Model        string        `json:"model,omitempty" yaml:"model,omitempty"` // gpt-image-1, dall-e-3
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// RateLimitRPS 客户端侧限速（每秒请求数，0 表示不限）
	RateLimitRPS float64 `json:"rate_limit_rps,omitempty" yaml:"rate_limit_rps,omitempty"`
}

// DefaultOpenAIConfig 返回默认 OpenAI 图像配置
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL: "https://api.openai.com",
		Model:   "gpt-image-1",
		Timeout: 120 * time.Second,
	}
}
