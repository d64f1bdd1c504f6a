// Package provider 封装外部语言模型调用。
// 每个上游只实现一个统一的 Generate 能力，由配置选择 adapter，
// 周边的提示词组装、超时控制、fallback 全部留在 ChatService 里，不在各 adapter 中重复。
package provider

import (
	"context"
	"fmt"

	"wildtrack-api/internal/config"

	"go.uber.org/zap"
)

// Provider 语言模型 Provider 统一接口
type Provider interface {
	// Generate 根据提示词生成一段回复文本
	// 失败时返回 domain.ProviderError；调用方负责超时控制（通过 ctx）
	Generate(ctx context.Context, prompt string) (string, error)
	// Name 返回 provider 名称（用于日志和错误信息）
	Name() string
}

// New 根据配置创建 Provider
// 凭证缺失视为配置错误，直接失败，不允许带病启动
func New(cfg *config.ProviderConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Name {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY")
		}
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout, logger), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Timeout, logger), nil
	case "ollama":
		if cfg.OllamaHost == "" {
			return nil, fmt.Errorf("ollama provider requires OLLAMA_HOST")
		}
		return NewOllamaProvider(cfg.OllamaHost, cfg.OllamaModel, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}
