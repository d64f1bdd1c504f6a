package provider

import (
	"context"
	"fmt"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ollamaRequest /api/generate 请求（stream=false，一次性拿完整回复）
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaResponse /api/generate 响应
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaProvider 本地 Ollama adapter（无需凭证，适合离线部署）
type OllamaProvider struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

// NewOllamaProvider 创建 Ollama adapter
func NewOllamaProvider(host, model string, timeout time.Duration, logger *zap.Logger) *OllamaProvider {
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &OllamaProvider{
		httpClient: client,
		model:      model,
		logger:     logger,
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

// Generate 调用 /api/generate 生成回复
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	request := ollamaRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	}

	var response ollamaResponse
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/api/generate")

	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Err: err}
	}
	if resp.IsError() {
		return "", &domain.ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("upstream returned %d: %s", resp.StatusCode(), resp.Status()),
		}
	}

	if response.Response == "" {
		return "", &domain.ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("malformed response: empty response field"),
		}
	}

	return response.Response, nil
}
