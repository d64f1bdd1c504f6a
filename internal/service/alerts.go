package service

import (
	"context"

	"wildtrack-api/internal/domain"
	"wildtrack-api/internal/events"
	"wildtrack-api/internal/metrics"

	"go.uber.org/zap"
)

// AlertsRepo 告警服务依赖的仓库能力
type AlertsRepo interface {
	Insert(ctx context.Context, in *domain.AlertInput) (*domain.Alert, error)
	Get(ctx context.Context, id string) (*domain.Alert, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Alert, error)
	ListAll(ctx context.Context) ([]domain.Alert, error)
}

// AlertService 告警服务接口
type AlertService interface {
	Create(ctx context.Context, in *domain.AlertInput) (*domain.Alert, error)
	Get(ctx context.Context, id string) (*domain.Alert, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Alert, error)
	ListAll(ctx context.Context) ([]domain.Alert, error)
}

type alertService struct {
	repo      AlertsRepo
	publisher *events.Publisher // 可为 nil（Redis 未启用时）
	logger    *zap.Logger
}

// NewAlertService 创建告警服务
func NewAlertService(repo AlertsRepo, publisher *events.Publisher, logger *zap.Logger) AlertService {
	return &alertService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create 入库一条告警并发布创建事件
func (s *alertService) Create(ctx context.Context, in *domain.AlertInput) (*domain.Alert, error) {
	alert, err := s.repo.Insert(ctx, in)
	if err != nil {
		if domain.IsValidation(err) {
			metrics.AlertsRejected.Inc()
		}
		return nil, err
	}

	metrics.AlertsIngested.Inc()
	s.logger.Info("Alert ingested",
		zap.String("alert_id", alert.ID),
		zap.String("animal", alert.AnimalLabel),
		zap.Float64("confidence", alert.Confidence),
	)

	// 事件发布失败不影响入库结果
	if s.publisher != nil {
		s.publisher.AlertCreated(ctx, alert)
	}

	return alert, nil
}

func (s *alertService) Get(ctx context.Context, id string) (*domain.Alert, error) {
	return s.repo.Get(ctx, id)
}

func (s *alertService) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	return s.repo.ListRecent(ctx, limit)
}

func (s *alertService) ListAll(ctx context.Context) ([]domain.Alert, error) {
	return s.repo.ListAll(ctx)
}
