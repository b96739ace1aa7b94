package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BaSui01/memeflow/types"
)

// Provider 定义叙事分析使用的聊天补全提供者接口
type Provider interface {
	// Completion 发送聊天补全请求
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name 返回提供者名称
	Name() string
}

// MapHTTPError 将 HTTP 状态码映射为统一的结构化错误
func MapHTTPError(status int, msg string, provider string) *types.Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &types.Error{
			Code:       types.ErrAuthentication,
			Message:    msg,
			HTTPStatus: status,
			Provider:   provider,
		}
	case http.StatusTooManyRequests:
		return &types.Error{
			Code:       types.ErrRateLimit,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  true,
			Provider:   provider,
		}
	case http.StatusBadRequest:
		return &types.Error{
			Code:       types.ErrInvalidInput,
			Message:    msg,
			HTTPStatus: status,
			Provider:   provider,
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &types.Error{
			Code:       types.ErrTimeout,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  true,
			Provider:   provider,
		}
	default:
		return &types.Error{
			Code:       types.ErrUpstreamError,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  status >= 500,
			Provider:   provider,
		}
	}
}

// ReadErrorMessage 从错误响应体提取人类可读的消息
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	// 尝试解析为通用错误响应
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}

	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "unknown error"
	}
	return msg
}
