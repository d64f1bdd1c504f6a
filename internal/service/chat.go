package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"wildtrack-api/internal/domain"
	"wildtrack-api/internal/metrics"
	"wildtrack-api/internal/provider"
	"wildtrack-api/internal/store"

	"go.uber.org/zap"
)

const digestCacheKey = "wildtrack:chat:digest"

// DigestSource 摘要来源（由 SummaryBuilder 实现）
type DigestSource interface {
	BuildFromStore(ctx context.Context) (*domain.Digest, error)
}

// ChatService 问答网关
// 状态流转：received → validated → summarized → dispatched → replied|fallback。
// provider 只调用一次、限时、可取消；除输入校验外的一切失败都吸收为 fallback 回复
type ChatService interface {
	Ask(ctx context.Context, message, language string) (string, error)
}

type chatService struct {
	digests  DigestSource
	provider provider.Provider
	cache    store.KV // 可为 nil（Redis 未启用时直接走仓库聚合）
	cacheTTL time.Duration
	timeout  time.Duration
	fallback string
	logger   *zap.Logger
}

// NewChatService 创建问答网关
func NewChatService(
	digests DigestSource,
	prov provider.Provider,
	cache store.KV,
	cacheTTL time.Duration,
	timeout time.Duration,
	fallback string,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		digests:  digests,
		provider: prov,
		cache:    cache,
		cacheTTL: cacheTTL,
		timeout:  timeout,
		fallback: fallback,
		logger:   logger,
	}
}

// Ask 回答一条关于告警历史的自由提问
func (s *chatService) Ask(ctx context.Context, message, language string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &domain.ValidationError{Field: "message", Reason: "is required"}
	}
	metrics.ChatRequests.Inc()

	if language == "" {
		language = "English"
	}

	// 摘要失败也走 fallback：问答功能降级，不把存储错误抛给调用方
	digest, err := s.loadDigest(ctx)
	if err != nil {
		s.logger.Error("Failed to build digest for chat", zap.Error(err))
		metrics.ChatFallbacks.Inc()
		return s.fallback, nil
	}

	prompt := buildPrompt(digest, message, language)

	// 单次调用，限时，取消即 fallback，不重试（保证请求延迟有界）
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.provider.Generate(callCtx, prompt)
	if err != nil {
		s.logger.Warn("Provider call failed, serving fallback",
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		metrics.ChatFallbacks.Inc()
		return s.fallback, nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		metrics.ChatFallbacks.Inc()
		return s.fallback, nil
	}

	return reply, nil
}

// loadDigest 读取摘要，优先走短 TTL 缓存
func (s *chatService) loadDigest(ctx context.Context) (*domain.Digest, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, digestCacheKey); err == nil {
			var digest domain.Digest
			if err := json.Unmarshal([]byte(cached), &digest); err == nil {
				return &digest, nil
			}
		} else if err != store.ErrMiss {
			s.logger.Warn("Digest cache read failed", zap.Error(err))
		}
	}

	digest, err := s.digests.BuildFromStore(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(digest); err == nil {
			if err := s.cache.Set(ctx, digestCacheKey, string(data), s.cacheTTL); err != nil {
				s.logger.Warn("Digest cache write failed", zap.Error(err))
			}
		}
	}

	return digest, nil
}

// buildPrompt 组装有界的指令上下文：行为规则 + 数据摘要 + 用户问题
func buildPrompt(digest *domain.Digest, message, language string) string {
	var b strings.Builder

	b.WriteString("You are an assistant for a wildlife alert monitoring system.\n")
	fmt.Fprintf(&b, "Reply only in %s.\n", language)
	b.WriteString("Answer only what is asked, using only the data summary below.\n")
	b.WriteString("If the summary does not contain the requested data, say the data is not available.\n\n")

	b.WriteString("Data summary:\n")
	fmt.Fprintf(&b, "- Total alerts: %d\n", digest.Total)
	fmt.Fprintf(&b, "- Detections per animal: %s\n", renderCounts(digest.AnimalCounts))
	fmt.Fprintf(&b, "- Detections per location: %s\n", renderCounts(digest.LocationCounts))
	fmt.Fprintf(&b, "- Most frequent animal: %s\n", digest.MostFrequentAnimal)
	fmt.Fprintf(&b, "- Most frequent location: %s\n", digest.MostFrequentLocation)
	fmt.Fprintf(&b, "- Last alert: %s\n", digest.ElapsedSinceLastAlert)

	b.WriteString("\nUser question: ")
	b.WriteString(message)

	return b.String()
}

// renderCounts 按键排序渲染计数，保证提示词可复现
func renderCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}
