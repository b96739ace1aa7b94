// 包 image 提供统一的图像生成提供者接口.
package image

import (
	"context"
	"time"
)

// GenerateRequest 代表文生图请求
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	Size   string `json:"size,omitempty"` // 1024x1024, 1536x1024, etc.
}

// NamedImage 是一张带文件名的参考图，编辑请求按序携带
type NamedImage struct {
	Name  string `json:"name"`
	Bytes []byte `json:"-"`
}

// EditRequest 代表图像编辑请求，参考图顺序有意义
type EditRequest struct {
	Prompt string       `json:"prompt"`
	Model  string       `json:"model,omitempty"`
	Images []NamedImage `json:"-"`
}

// Image 代表一张已解码的生成图像
type Image struct {
	Bytes         []byte    `json:"-"`
	Model         string    `json:"model,omitempty"`
	RevisedPrompt string    `json:"revised_prompt,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Provider 定义图像生成提供者接口
// 远端行为视为不透明：可能超时、限流或返回畸形响应，
// 全部以结构化错误暴露给调用方
type Provider interface {
	// Generate 从文本提示生成图像
	Generate(ctx context.Context, req *GenerateRequest) (*Image, error)

	// Edit 根据提示词编辑/合成参考图
	Edit(ctx context.Context, req *EditRequest) (*Image, error)

	// Name 返回提供者名称
	Name() string
}
