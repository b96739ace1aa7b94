// 包 mocks 提供聊天与图像后端的测试模拟实现。
//
// 支持固定响应、错误注入与按提示词的延迟/失败场景。
package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/memeflow/llm"
	"github.com/BaSui01/memeflow/llm/image"
)

// --- MockChatProvider 结构 ---

// MockChatProvider 是 llm.Provider 的模拟实现
type MockChatProvider struct {
	mu sync.Mutex

	// 响应配置
	response string
	err      error

	// 调用记录
	calls          []*llm.ChatRequest
	completionFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// NewMockChatProvider 创建新的 MockChatProvider
func NewMockChatProvider() *MockChatProvider {
	return &MockChatProvider{response: "Mock response"}
}

// WithResponse 设置固定响应内容
func (m *MockChatProvider) WithResponse(content string) *MockChatProvider {
	m.response = content
	return m
}

// WithError 设置固定错误
func (m *MockChatProvider) WithError(err error) *MockChatProvider {
	m.err = err
	return m
}

// WithCompletionFunc 设置自定义补全函数
func (m *MockChatProvider) WithCompletionFunc(fn func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)) *MockChatProvider {
	m.completionFunc = fn
	return m
}

func (m *MockChatProvider) Name() string { return "mock-chat" }

// Completion 实现 llm.Provider
func (m *MockChatProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.completionFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llm.ChatResponse{
		ID:       "mock-1",
		Provider: m.Name(),
		Model:    req.Model,
		Choices: []llm.ChatChoice{{
			Message:      llm.Message{Role: llm.RoleAssistant, Content: m.response},
			FinishReason: "stop",
		}},
	}, nil
}

// Calls 返回记录的调用
func (m *MockChatProvider) Calls() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*llm.ChatRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// --- MockImageProvider 结构 ---

// promptRule 按提示词子串匹配的注入规则
type promptRule struct {
	substr string
	err    error
	delay  time.Duration
}

// MockImageProvider 是 image.Provider 的模拟实现
// 每个 prompt 产出确定性的字节；失败与延迟按提示词子串注入，
// 与并发调度顺序无关，测试结果可复现
type MockImageProvider struct {
	mu sync.Mutex

	rules    []promptRule
	generate func(prompt string) []byte

	callCount int
	generates []string
	edits     []string
}

// NewMockImageProvider 创建新的 MockImageProvider
func NewMockImageProvider() *MockImageProvider {
	return &MockImageProvider{
		generate: func(prompt string) []byte {
			return []byte("PNG:" + prompt)
		},
	}
}

// FailOnPrompt 使提示词包含 substr 的调用返回 err
func (m *MockImageProvider) FailOnPrompt(substr string, err error) *MockImageProvider {
	m.rules = append(m.rules, promptRule{substr: substr, err: err})
	return m
}

// DelayOnPrompt 使提示词包含 substr 的调用延迟 d 后才返回
func (m *MockImageProvider) DelayOnPrompt(substr string, d time.Duration) *MockImageProvider {
	m.rules = append(m.rules, promptRule{substr: substr, delay: d})
	return m
}

// WithBytesFunc 自定义 prompt 到图像字节的映射
func (m *MockImageProvider) WithBytesFunc(fn func(prompt string) []byte) *MockImageProvider {
	m.generate = fn
	return m
}

func (m *MockImageProvider) Name() string { return "mock-image" }

// Generate 实现 image.Provider
func (m *MockImageProvider) Generate(ctx context.Context, req *image.GenerateRequest) (*image.Image, error) {
	return m.respond(ctx, req.Prompt, true)
}

// Edit 实现 image.Provider
func (m *MockImageProvider) Edit(ctx context.Context, req *image.EditRequest) (*image.Image, error) {
	return m.respond(ctx, req.Prompt, false)
}

func (m *MockImageProvider) respond(ctx context.Context, prompt string, isGenerate bool) (*image.Image, error) {
	m.mu.Lock()
	m.callCount++
	if isGenerate {
		m.generates = append(m.generates, prompt)
	} else {
		m.edits = append(m.edits, prompt)
	}
	var delay time.Duration
	var failErr error
	for _, r := range m.rules {
		if strings.Contains(prompt, r.substr) {
			if r.err != nil {
				failErr = r.err
			}
			if r.delay > 0 {
				delay = r.delay
			}
		}
	}
	gen := m.generate
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	return &image.Image{Bytes: gen(prompt), Model: "mock", CreatedAt: time.Now()}, nil
}

// CallCount 返回累计调用次数
func (m *MockImageProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// GeneratePrompts 返回记录的生成提示词
func (m *MockImageProvider) GeneratePrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.generates))
	copy(out, m.generates)
	return out
}

// EditPrompts 返回记录的编辑提示词
func (m *MockImageProvider) EditPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.edits))
	copy(out, m.edits)
	return out
}
