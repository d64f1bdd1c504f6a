package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"wildtrack-api/internal/domain"

	"go.uber.org/zap"
)

// AlertWriter 桥接目标：与 HTTP 入库走同一条路径
type AlertWriter interface {
	Create(ctx context.Context, in *domain.AlertInput) (*domain.Alert, error)
}

// EdgeBroker 边缘设备 MQTT 上报桥
// 设备向订阅主题推送检测事件（单条或数组），桥接到告警入库；
// 坏消息记日志后丢弃，不影响订阅（投递保证由边缘侧的离线同步负责，此处不做）
type EdgeBroker struct {
	alerts AlertWriter
	logger *zap.Logger
}

// NewEdgeBroker 创建边缘上报桥
func NewEdgeBroker(alerts AlertWriter, logger *zap.Logger) *EdgeBroker {
	return &EdgeBroker{
		alerts: alerts,
		logger: logger,
	}
}

// HandleMessage 处理一条 MQTT 消息
func (b *EdgeBroker) HandleMessage(topic string, payload []byte) error {
	inputs, err := decodePayload(payload)
	if err != nil {
		b.logger.Warn("Dropping malformed edge payload",
			zap.String("topic", topic),
			zap.Int("payload_size", len(payload)),
			zap.Error(err),
		)
		return err
	}

	for i := range inputs {
		if _, err := b.alerts.Create(context.Background(), &inputs[i]); err != nil {
			// 继续处理下一条消息，不中断
			b.logger.Warn("Dropping invalid edge alert",
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}

	return nil
}

// decodePayload 兼容单条对象和数组两种消息格式
func decodePayload(payload []byte) ([]domain.AlertInput, error) {
	var many []domain.AlertInput
	if err := json.Unmarshal(payload, &many); err == nil {
		return many, nil
	}

	var one domain.AlertInput
	if err := json.Unmarshal(payload, &one); err != nil {
		return nil, fmt.Errorf("payload is neither an alert nor an alert array: %w", err)
	}
	return []domain.AlertInput{one}, nil
}
