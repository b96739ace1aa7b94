package bulk

import (
	"strings"

	"github.com/BaSui01/memeflow/types"
)

// RequestKind 区分生成与编辑两种请求
type RequestKind string

const (
	// KindGenerate 文生图
	KindGenerate RequestKind = "generate"
	// KindEdit 基于参考图的编辑/合成
	KindEdit RequestKind = "edit"
)

// GenerationRequest 单个图像请求，创建后不可变
// Generate 变体只带 Prompt；Edit 变体额外带有序的参考图路径
type GenerationRequest struct {
	Kind       RequestKind `json:"kind"`
	Prompt     string      `json:"prompt"`
	InputPaths []string    `json:"input_paths,omitempty"`
	OutputPath string      `json:"output_path"`
}

// NewGenerate 构造文生图请求
func NewGenerate(prompt, outputPath string) GenerationRequest {
	return GenerationRequest{
		Kind:       KindGenerate,
		Prompt:     prompt,
		OutputPath: outputPath,
	}
}

// NewEdit 构造编辑请求，参考图顺序保留
func NewEdit(prompt string, inputPaths []string, outputPath string) GenerationRequest {
	paths := make([]string, len(inputPaths))
	copy(paths, inputPaths)
	return GenerationRequest{
		Kind:       KindEdit,
		Prompt:     prompt,
		InputPaths: paths,
		OutputPath: outputPath,
	}
}

// Validate 在任何网络调用前校验请求
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return types.NewError(types.ErrInvalidInput, "prompt is empty")
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		return types.NewError(types.ErrInvalidInput, "output path is empty")
	}
	switch r.Kind {
	case KindGenerate:
		// 无额外约束
	case KindEdit:
		if len(r.InputPaths) == 0 {
			return types.NewError(types.ErrInvalidInput, "edit request requires at least one input path")
		}
	default:
		return types.NewError(types.ErrInvalidInput, "unknown request kind: "+string(r.Kind))
	}
	return nil
}
