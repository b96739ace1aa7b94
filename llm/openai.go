package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OpenAIConfig 配置 OpenAI 聊天提供者
type OpenAIConfig struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	Organization string        `json:"organization,omitempty" yaml:"organization,omitempty"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Model        string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// OpenAIProvider 通过 Chat Completions API 实现 Provider
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *http.Client
	logger *zap.Logger
}

// NewOpenAIProvider 创建新的 OpenAI 聊天提供者实例
func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type chatCompletionsRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionsResponse struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage ChatUsage `json:"usage"`
}

// Completion 发送聊天补全请求
func (p *OpenAIProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	body := chatCompletionsRequest{
		Model:       model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONResponse {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, MapHTTPError(http.StatusBadGateway, err.Error(), p.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := ReadErrorMessage(resp.Body)
		p.logger.Warn("chat completion failed",
			zap.Int("status", resp.StatusCode),
			zap.String("model", model),
		)
		return nil, MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var ccResp chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ccResp); err != nil {
		return nil, MapHTTPError(http.StatusBadGateway, "failed to decode chat response: "+err.Error(), p.Name())
	}

	choices := make([]ChatChoice, len(ccResp.Choices))
	for i, c := range ccResp.Choices {
		choices[i] = ChatChoice{Index: c.Index, Message: c.Message, FinishReason: c.FinishReason}
	}

	return &ChatResponse{
		ID:        ccResp.ID,
		Provider:  p.Name(),
		Model:     ccResp.Model,
		Choices:   choices,
		Usage:     ccResp.Usage,
		CreatedAt: time.Unix(ccResp.Created, 0),
	}, nil
}

// setHeaders 设置认证头（含可选的 Organization）
func (p *OpenAIProvider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	if p.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", p.cfg.Organization)
	}
	req.Header.Set("Content-Type", "application/json")
}
