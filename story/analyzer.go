package story

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/memeflow/llm"
	"github.com/BaSui01/memeflow/types"
)

// NarrativePoint 一个叙事节点：画面描述 + 配文
type NarrativePoint struct {
	Visual  string `json:"visual"`
	Caption string `json:"caption"`
}

// Analyzer 调用语言模型把故事拆解为固定数量的叙事节点
type Analyzer struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
}

// NewAnalyzer 创建叙事分析器
func NewAnalyzer(provider llm.Provider, model string, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{provider: provider, model: model, logger: logger}
}

// Analyze 分析故事并返回恰好 NumMemes 个叙事节点
// 数量不符或输出畸形都返回错误，不做部分推进
func (a *Analyzer) Analyze(ctx context.Context, storyText string) ([]NarrativePoint, error) {
	if strings.TrimSpace(storyText) == "" {
		return nil, types.NewError(types.ErrInvalidInput, "story text is empty")
	}

	req := &llm.ChatRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildAnalysisPrompt(storyText)},
		},
		JSONResponse: true,
	}

	resp, err := a.provider.Completion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("narrative analysis request failed: %w", err)
	}

	points, err := parseNarrativePoints(resp.Content())
	if err != nil {
		return nil, err
	}

	if len(points) != NumMemes {
		return nil, types.NewError(types.ErrInvalidResponse,
			fmt.Sprintf("expected exactly %d narrative points, model returned %d", NumMemes, len(points)))
	}

	a.logger.Debug("narrative analysis complete",
		zap.Int("points", len(points)),
		zap.String("model", resp.Model),
	)
	return points, nil
}

// parseNarrativePoints 从模型输出提取叙事节点
// 依次尝试：{"memes": [...]} 对象 → 裸数组 → 截取最外层 [ ... ] 再解析
func parseNarrativePoints(content string) ([]NarrativePoint, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, types.NewError(types.ErrInvalidResponse, "model returned empty analysis")
	}

	var wrapped struct {
		Memes []NarrativePoint `json:"memes"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && len(wrapped.Memes) > 0 {
		return validatePoints(wrapped.Memes)
	}

	var bare []NarrativePoint
	if err := json.Unmarshal([]byte(content), &bare); err == nil && len(bare) > 0 {
		return validatePoints(bare)
	}

	// 模型偶尔会在 JSON 前后追加说明文字，截取最外层数组再试
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		var salvaged []NarrativePoint
		if err := json.Unmarshal([]byte(content[start:end+1]), &salvaged); err == nil && len(salvaged) > 0 {
			return validatePoints(salvaged)
		}
	}

	return nil, types.NewError(types.ErrInvalidResponse, "failed to parse narrative points from model response")
}

// validatePoints 拒绝缺失画面描述的节点
func validatePoints(points []NarrativePoint) ([]NarrativePoint, error) {
	for i, p := range points {
		if strings.TrimSpace(p.Visual) == "" {
			return nil, types.NewError(types.ErrInvalidResponse,
				fmt.Sprintf("narrative point %d has no visual description", i+1))
		}
	}
	return points, nil
}
