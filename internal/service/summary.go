package service

import (
	"context"
	"fmt"
	"time"

	"wildtrack-api/internal/domain"

	"go.uber.org/zap"
)

// SummaryRepo 摘要构建依赖的仓库能力
type SummaryRepo interface {
	AggregateSummary(ctx context.Context) (*domain.SummaryAggregate, error)
}

// SummaryBuilder 把告警历史归约为固定形状的统计摘要
// 空历史也产出结构完整的摘要（total=0 + 哨兵值），永不失败
type SummaryBuilder struct {
	repo   SummaryRepo
	logger *zap.Logger
	now    func() time.Time
}

// NewSummaryBuilder 创建摘要构建器
func NewSummaryBuilder(repo SummaryRepo, logger *zap.Logger) *SummaryBuilder {
	return &SummaryBuilder{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// BuildFromStore 基于数据库侧聚合构建摘要（常规路径，不拉全表）
func (b *SummaryBuilder) BuildFromStore(ctx context.Context) (*domain.Digest, error) {
	agg, err := b.repo.AggregateSummary(ctx)
	if err != nil {
		return nil, err
	}
	return b.fromAggregate(agg), nil
}

// BuildFromAlerts 基于告警快照构建摘要（纯函数，窗口化摘要或测试用）
func (b *SummaryBuilder) BuildFromAlerts(alerts []domain.Alert) *domain.Digest {
	agg := &domain.SummaryAggregate{
		Total:          len(alerts),
		AnimalCounts:   map[string]int{},
		LocationCounts: map[string]int{},
	}

	for i := range alerts {
		a := &alerts[i]
		agg.AnimalCounts[a.AnimalLabel]++
		if a.Location != nil {
			agg.LocationCounts[*a.Location]++
		}
		if agg.MostRecent == nil || a.DetectedAt.After(*agg.MostRecent) {
			t := a.DetectedAt
			agg.MostRecent = &t
		}
	}

	return b.fromAggregate(agg)
}

func (b *SummaryBuilder) fromAggregate(agg *domain.SummaryAggregate) *domain.Digest {
	digest := &domain.Digest{
		Total:                 agg.Total,
		AnimalCounts:          agg.AnimalCounts,
		LocationCounts:        agg.LocationCounts,
		MostFrequentAnimal:    mostFrequent(agg.AnimalCounts),
		MostFrequentLocation:  mostFrequent(agg.LocationCounts),
		MostRecentTimestamp:   agg.MostRecent,
		ElapsedSinceLastAlert: domain.NoAlertsSentinel,
	}
	if digest.AnimalCounts == nil {
		digest.AnimalCounts = map[string]int{}
	}
	if digest.LocationCounts == nil {
		digest.LocationCounts = map[string]int{}
	}
	if agg.MostRecent != nil {
		digest.ElapsedSinceLastAlert = humanizeElapsed(b.now().Sub(*agg.MostRecent))
	}
	return digest
}

// mostFrequent 取计数最高的键；计数相同时取字典序最小的键，保证结果可复现
func mostFrequent(counts map[string]int) string {
	best := ""
	bestCount := 0
	for label, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || label < best)) {
			best = label
			bestCount = count
		}
	}
	if best == "" {
		return domain.NoValueSentinel
	}
	return best
}

// humanizeElapsed 把距上次告警的时长转成 "N ... ago"
func humanizeElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
