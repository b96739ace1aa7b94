package types

import "fmt"

// ErrorCode represents a unified error code across the pipeline.
type ErrorCode string

// 请求级错误码：在单个图像请求边界内被捕获为数据，不向外传播
const (
	ErrInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrBackendFailure  ErrorCode = "BACKEND_FAILURE"
	ErrRateLimit       ErrorCode = "RATE_LIMIT"
	ErrAuthentication  ErrorCode = "AUTHENTICATION"
	ErrTimeout         ErrorCode = "TIMEOUT"
	ErrUpstreamError   ErrorCode = "UPSTREAM_ERROR"
	ErrInvalidResponse ErrorCode = "INVALID_RESPONSE"
)

// 阶段级错误码：终止整个运行
const (
	ErrPipeline          ErrorCode = "PIPELINE_ERROR"
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
