package service

import (
	"context"
	"testing"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRangeRepo struct {
	count       int
	counts      map[string]int
	err         error
	gotStart    time.Time
	gotEnd      time.Time
	rangeCalled bool
}

func (f *fakeRangeRepo) CountInRange(ctx context.Context, start, end time.Time) (int, error) {
	f.gotStart, f.gotEnd = start, end
	f.rangeCalled = true
	return f.count, f.err
}

func (f *fakeRangeRepo) CountByAnimalInRange(ctx context.Context, start, end time.Time) (map[string]int, error) {
	f.gotStart, f.gotEnd = start, end
	f.rangeCalled = true
	return f.counts, f.err
}

func newTestAnalytics(repo *fakeRangeRepo, loc *time.Location, now time.Time) *analyticsService {
	svc := NewAnalyticsService(repo, loc, zap.NewNop()).(*analyticsService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestToday_WindowStartsAtLocalMidnight(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	// UTC 凌晨 2 点在丹佛还是前一天晚上，窗口起点必须按服务时区取零点
	now := time.Date(2026, 8, 23, 2, 0, 0, 0, time.UTC)
	repo := &fakeRangeRepo{count: 4}
	svc := newTestAnalytics(repo, denver, now)

	count, err := svc.Today(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, time.Date(2026, 8, 22, 0, 0, 0, 0, denver).String(), repo.gotStart.String())
	assert.True(t, repo.gotEnd.Equal(now))
}

func TestToday_DefaultsToUTC(t *testing.T) {
	now := time.Date(2026, 8, 23, 15, 30, 0, 0, time.UTC)
	repo := &fakeRangeRepo{count: 0}
	svc := newTestAnalytics(repo, nil, now)

	_, err := svc.Today(context.Background())

	require.NoError(t, err)
	assert.True(t, repo.gotStart.Equal(time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)))
}

func TestLast7Days_GroupsByAnimal(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	repo := &fakeRangeRepo{counts: map[string]int{"tiger": 3, "deer": 1}}
	svc := newTestAnalytics(repo, time.UTC, now)

	counts, err := svc.Last7Days(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tiger": 3, "deer": 1}, counts)
	assert.True(t, repo.gotStart.Equal(now.AddDate(0, 0, -7)))
	assert.True(t, repo.gotEnd.Equal(now))
}

func TestRange_AcceptsRFC3339Bounds(t *testing.T) {
	repo := &fakeRangeRepo{count: 9}
	svc := newTestAnalytics(repo, time.UTC, time.Now())

	count, err := svc.Range(context.Background(), "2026-08-01T00:00:00Z", "2026-08-20T18:00:00Z")

	require.NoError(t, err)
	assert.Equal(t, 9, count)
	assert.True(t, repo.gotStart.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, repo.gotEnd.Equal(time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)))
}

func TestRange_DateOnlyEndCoversWholeDay(t *testing.T) {
	repo := &fakeRangeRepo{count: 2}
	svc := newTestAnalytics(repo, time.UTC, time.Now())

	_, err := svc.Range(context.Background(), "2026-08-01", "2026-08-02")

	require.NoError(t, err)
	assert.True(t, repo.gotStart.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	// 纯日期结束边界扩展到当日末尾
	assert.True(t, repo.gotEnd.Equal(time.Date(2026, 8, 2, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)))
}

func TestRange_RejectsBadBounds(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "2026-08-02"},
		{"missing end", "2026-08-01", ""},
		{"unparsable start", "not-a-date", "2026-08-02"},
		{"unparsable end", "2026-08-01", "08/02/2026"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRangeRepo{}
			svc := newTestAnalytics(repo, time.UTC, time.Now())

			_, err := svc.Range(context.Background(), tc.start, tc.end)

			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			// 校验失败不触发查询
			assert.False(t, repo.rangeCalled)
		})
	}
}
