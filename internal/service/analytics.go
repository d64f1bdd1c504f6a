package service

import (
	"context"
	"time"

	"wildtrack-api/internal/domain"

	"go.uber.org/zap"
)

// RangeRepo 分析服务依赖的仓库能力
type RangeRepo interface {
	CountInRange(ctx context.Context, start, end time.Time) (int, error)
	CountByAnimalInRange(ctx context.Context, start, end time.Time) (map[string]int, error)
}

// AnalyticsService 时间窗口只读聚合
type AnalyticsService interface {
	// Today 统计 [当日零点, 当前时刻] 的告警数
	Today(ctx context.Context) (int, error)
	// Last7Days 统计 [7天前, 当前时刻] 按动物分组的告警数
	Last7Days(ctx context.Context) (map[string]int, error)
	// Range 统计调用方给定闭区间的告警数，边界缺失或无法解析时返回 ValidationError
	Range(ctx context.Context, startDate, endDate string) (int, error)
}

type analyticsService struct {
	repo   RangeRepo
	loc    *time.Location // "today" 边界时区，服务启动时决定一次
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(repo RangeRepo, loc *time.Location, logger *zap.Logger) AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &analyticsService{
		repo:   repo,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

func (s *analyticsService) Today(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.repo.CountInRange(ctx, startOfDay, now)
}

func (s *analyticsService) Last7Days(ctx context.Context) (map[string]int, error) {
	now := s.now()
	return s.repo.CountByAnimalInRange(ctx, now.AddDate(0, 0, -7), now)
}

func (s *analyticsService) Range(ctx context.Context, startDate, endDate string) (int, error) {
	start, err := parseRangeBound(startDate, false)
	if err != nil {
		return 0, &domain.ValidationError{Field: "startDate", Reason: "is missing or unparsable"}
	}
	end, err := parseRangeBound(endDate, true)
	if err != nil {
		return 0, &domain.ValidationError{Field: "endDate", Reason: "is missing or unparsable"}
	}

	return s.repo.CountInRange(ctx, start, end)
}

// parseRangeBound 解析区间边界，接受 RFC 3339 或纯日期
// 纯日期作为结束边界时扩展到当日末尾，保证日期闭区间符合直觉
func parseRangeBound(value string, isEnd bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, &domain.ValidationError{Field: "date", Reason: "is required"}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if isEnd {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
