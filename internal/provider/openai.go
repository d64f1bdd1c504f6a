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

// openaiRequest chat/completions 请求
type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiResponse chat/completions 响应（只取第一个 choice）
type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIProvider 兼容 OpenAI chat/completions 协议的 adapter
// base URL 可配置，同一份代码覆盖 OpenAI / Groq 等同协议上游
type OpenAIProvider struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

// NewOpenAIProvider 创建 OpenAI 兼容 adapter（不重试，由上层 fallback 兜底）
func NewOpenAIProvider(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *OpenAIProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OpenAIProvider{
		httpClient: client,
		model:      model,
		logger:     logger,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Generate 调用 chat/completions 生成回复
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	request := openaiRequest{
		Model: p.model,
		Messages: []openaiMessage{
			{Role: "user", Content: prompt},
		},
	}

	var response openaiResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/v1/chat/completions")

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

	if len(response.Choices) == 0 {
		return "", &domain.ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("malformed response: no choices"),
		}
	}

	return response.Choices[0].Message.Content, nil
}
