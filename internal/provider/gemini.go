package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// geminiRequest Gemini generateContent 请求
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse Gemini generateContent 响应（只取第一个 candidate）
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiProvider Google Gemini adapter
type GeminiProvider struct {
	httpClient *resty.Client
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewGeminiProvider 创建 Gemini adapter
// 不重试：每次请求只调用一次上游，由上层 fallback 兜底
func NewGeminiProvider(apiKey, model string, timeout time.Duration, logger *zap.Logger) *GeminiProvider {
	client := resty.New().
		SetBaseURL(geminiBaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &GeminiProvider{
		httpClient: client,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Generate 调用 generateContent 生成回复
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	request := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	var response geminiResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(request).
		SetResult(&response).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", p.model))

	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Err: err}
	}
	if resp.IsError() {
		// resty 只在成功时反序列化 SetResult，错误体需要手动解析
		msg := resp.Status()
		_ = json.Unmarshal(resp.Body(), &response)
		if response.Error != nil && response.Error.Message != "" {
			msg = response.Error.Message
		}
		return "", &domain.ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("upstream returned %d: %s", resp.StatusCode(), msg),
		}
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", &domain.ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("malformed response: no candidates"),
		}
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}
