package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaSui01/memeflow/llm"
	"github.com/BaSui01/memeflow/types"
)

// OpenAIProvider 使用 OpenAI 图像 API（gpt-image-1 / DALL-E）执行生成与编辑
type OpenAIProvider struct {
	cfg     OpenAIConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenAIProvider 创建新的 OpenAI 图像提供者
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-image-1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}

	return &OpenAIProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (p *OpenAIProvider) Name() string { return "openai-image" }

type imageAPIRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n,omitempty"`
	Size   string `json:"size,omitempty"`
}

type imageAPIResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// Generate 从文本提示生成图像
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerateRequest) (*Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, types.NewError(types.ErrInvalidInput, "prompt is required").WithProvider(p.Name())
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	body := imageAPIRequest{
		Model:  model,
		Prompt: req.Prompt,
		N:      1,
		Size:   req.Size,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/images/generations",
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	return p.do(ctx, httpReq, model)
}

// Edit 根据提示词编辑/合成参考图
// 参考图以 image[] 表单字段按序上传，顺序决定合成语义
func (p *OpenAIProvider) Edit(ctx context.Context, req *EditRequest) (*Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, types.NewError(types.ErrInvalidInput, "prompt is required").WithProvider(p.Name())
	}
	if len(req.Images) == 0 {
		return nil, types.NewError(types.ErrInvalidInput, "at least one reference image is required").WithProvider(p.Name())
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, img := range req.Images {
		name := img.Name
		if name == "" {
			name = "image.png"
		}
		part, err := writer.CreateFormFile("image[]", name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(img.Bytes); err != nil {
			return nil, fmt.Errorf("failed to write image part: %w", err)
		}
	}

	_ = writer.WriteField("prompt", req.Prompt)
	_ = writer.WriteField("model", model)
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/images/edits",
		&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	return p.do(ctx, httpReq, model)
}

// do 执行请求并把响应解码为原始图像字节
func (p *OpenAIProvider) do(ctx context.Context, httpReq *http.Request, model string) (*Image, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, types.NewError(types.ErrTimeout, "rate limiter wait cancelled").
				WithCause(err).WithProvider(p.Name())
		}
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrBackendFailure, err.Error()).
			WithRetryable(true).WithProvider(p.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := llm.ReadErrorMessage(resp.Body)
		return nil, llm.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var apiResp imageAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, types.NewError(types.ErrInvalidResponse, "failed to decode image response").
			WithCause(err).WithProvider(p.Name())
	}
	if len(apiResp.Data) == 0 || apiResp.Data[0].B64JSON == "" {
		return nil, types.NewError(types.ErrInvalidResponse, "image response carries no b64_json payload").
			WithProvider(p.Name())
	}

	raw, err := base64.StdEncoding.DecodeString(apiResp.Data[0].B64JSON)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidResponse, "failed to decode b64_json image data").
			WithCause(err).WithProvider(p.Name())
	}

	img := &Image{
		Bytes:         raw,
		Model:         model,
		RevisedPrompt: apiResp.Data[0].RevisedPrompt,
	}
	if apiResp.Created != 0 {
		img.CreatedAt = time.Unix(apiResp.Created, 0)
	}
	return img, nil
}

// setHeaders 设置认证头（含可选的 Organization）
func (p *OpenAIProvider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	if p.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", p.cfg.Organization)
	}
}
