package events

import (
	"context"
	"encoding/json"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Publisher 把新入库的告警发布到 Redis Stream，
// 供下游消费者（通知、二次聚合等）订阅，不参与请求主链路
type Publisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewPublisher 创建告警事件发布器
func NewPublisher(client *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// AlertCreated 发布告警创建事件（fire-and-forget：失败只记日志，不影响入库结果）
func (p *Publisher) AlertCreated(ctx context.Context, alert *domain.Alert) {
	if p == nil || p.client == nil {
		return
	}

	data, err := json.Marshal(alert)
	if err != nil {
		p.logger.Error("Failed to marshal alert event", zap.Error(err))
		return
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event":     "alert.created",
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
	if err != nil {
		p.logger.Error("Failed to publish alert event",
			zap.String("stream", p.stream),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("Published alert event",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("alert_id", alert.ID),
	)
}
