package bulk

import "fmt"

// Status 单项请求的终态
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// RequestResult 与 GenerationRequest 一一对应的结果记录，创建后不再修改
// Index 是请求在原始批次中的位置；失败结果的 OutputPath 恒为空，
// 且磁盘上不存在对应文件
type RequestResult struct {
	Index       int    `json:"index"`
	OutputPath  string `json:"output_path,omitempty"`
	Status      Status `json:"status"`
	ErrorDetail string `json:"error,omitempty"`
}

// BatchResult 按提交顺序排列的结果集，由派发器的调用方独占
type BatchResult struct {
	Results   []RequestResult `json:"results"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// OutputPaths 返回成功项的输出路径，跳过失败槽位但保持相对顺序
func (b BatchResult) OutputPaths() []string {
	paths := make([]string, 0, b.Succeeded)
	for _, r := range b.Results {
		if r.Status == StatusSuccess {
			paths = append(paths, r.OutputPath)
		}
	}
	return paths
}

// FailureReasons 返回失败项的人类可读描述，按提交顺序
func (b BatchResult) FailureReasons() []string {
	reasons := make([]string, 0, b.Failed)
	for _, r := range b.Results {
		if r.Status == StatusFailure {
			reasons = append(reasons, fmt.Sprintf("item %d: %s", r.Index+1, r.ErrorDetail))
		}
	}
	return reasons
}
