package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockAlertsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AlertsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewAlertsRepository(db, logger)

	return db, mock, repo
}

func alertRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"alert_id", "animal_label", "confidence", "image_ref",
		"location", "latitude", "longitude", "detected_at",
	})
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

// ============================================
// Insert
// ============================================

func TestInsert_Success(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	ctx := context.Background()
	detectedAt := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs(sqlmock.AnyArg(), "tiger", 0.92, strPtr("s3://alerts/img1.jpg"),
			strPtr("north ridge"), floatPtr(12.5), floatPtr(77.1), detectedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	alert, err := repo.Insert(ctx, &domain.AlertInput{
		AnimalLabel: "tiger",
		Confidence:  floatPtr(0.92),
		ImageRef:    strPtr("s3://alerts/img1.jpg"),
		Location:    strPtr("north ridge"),
		Latitude:    floatPtr(12.5),
		Longitude:   floatPtr(77.1),
		DetectedAt:  &detectedAt,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "tiger", alert.AnimalLabel)
	assert.Equal(t, 0.92, alert.Confidence)
	assert.Equal(t, detectedAt, alert.DetectedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DefaultsTimestamp(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	before := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs(sqlmock.AnyArg(), "deer", 0.7, nil, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	alert, err := repo.Insert(context.Background(), &domain.AlertInput{
		AnimalLabel: "deer",
		Confidence:  floatPtr(0.7),
	})

	require.NoError(t, err)
	assert.False(t, alert.DetectedAt.Before(before))
	assert.False(t, alert.DetectedAt.After(time.Now().UTC()))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_MissingAnimalLabel(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	alert, err := repo.Insert(context.Background(), &domain.AlertInput{
		Confidence: floatPtr(0.9),
	})

	require.Error(t, err)
	assert.Nil(t, alert)
	assert.True(t, domain.IsValidation(err))

	// 校验失败时不允许产生任何写入
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_MissingConfidence(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	alert, err := repo.Insert(context.Background(), &domain.AlertInput{
		AnimalLabel: "tiger",
	})

	require.Error(t, err)
	assert.Nil(t, alert)
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Get
// ============================================

func TestGet_Success(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	alertID := uuid.New().String()
	detectedAt := time.Now()

	rows := alertRows().AddRow(
		alertID, "elephant", 0.88, nil,
		"river bend", nil, nil, detectedAt,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(alertID).
		WillReturnRows(rows)

	alert, err := repo.Get(context.Background(), alertID)

	require.NoError(t, err)
	assert.Equal(t, alertID, alert.ID)
	assert.Equal(t, "elephant", alert.AnimalLabel)
	assert.Equal(t, 0.88, alert.Confidence)
	assert.Nil(t, alert.ImageRef)
	require.NotNil(t, alert.Location)
	assert.Equal(t, "river bend", *alert.Location)
	assert.Nil(t, alert.Latitude)
	assert.Nil(t, alert.Longitude)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	alertID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).
		WithArgs(alertID).
		WillReturnError(sql.ErrNoRows)

	alert, err := repo.Get(context.Background(), alertID)

	require.Error(t, err)
	assert.Nil(t, alert)
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// 列表和窗口查询
// ============================================

func TestListRecent_AppliesDefaultAndCap(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	mock.ExpectQuery(`ORDER BY detected_at DESC, seq DESC`).
		WithArgs(DefaultRecentLimit).
		WillReturnRows(alertRows())

	_, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)

	mock.ExpectQuery(`ORDER BY detected_at DESC, seq DESC`).
		WithArgs(MaxRecentLimit).
		WillReturnRows(alertRows())

	_, err = repo.ListRecent(context.Background(), 10000)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent_ReturnsAlerts(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	now := time.Now()
	rows := alertRows().
		AddRow(uuid.New().String(), "tiger", 0.9, nil, nil, nil, nil, now).
		AddRow(uuid.New().String(), "deer", 0.6, nil, nil, nil, nil, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT`).
		WithArgs(2).
		WillReturnRows(rows)

	alerts, err := repo.ListRecent(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "tiger", alerts[0].AnimalLabel)
	assert.Equal(t, "deer", alerts[1].AnimalLabel)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountInRange(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountInRange(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, 7, count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountInRange_EmptyWindow(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	start := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(start, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountInRange(context.Background(), start, start)

	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountByAnimalInRange(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	start := time.Now().AddDate(0, 0, -7)
	end := time.Now()

	mock.ExpectQuery(`GROUP BY animal_label`).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"animal_label", "count"}).
			AddRow("tiger", 3).
			AddRow("deer", 2))

	counts, err := repo.CountByAnimalInRange(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tiger": 3, "deer": 2}, counts)

	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// 摘要聚合
// ============================================

func TestAggregateSummary(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	mostRecent := time.Date(2026, 8, 22, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\), MAX\(detected_at\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(5, mostRecent))
	mock.ExpectQuery(`GROUP BY animal_label`).
		WillReturnRows(sqlmock.NewRows([]string{"animal_label", "count"}).
			AddRow("tiger", 3).
			AddRow("deer", 2))
	mock.ExpectQuery(`WHERE location IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"location", "count"}).
			AddRow("north ridge", 4))

	agg, err := repo.AggregateSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, agg.Total)
	assert.Equal(t, map[string]int{"tiger": 3, "deer": 2}, agg.AnimalCounts)
	assert.Equal(t, map[string]int{"north ridge": 4}, agg.LocationCounts)
	require.NotNil(t, agg.MostRecent)
	assert.True(t, agg.MostRecent.Equal(mostRecent))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateSummary_EmptyStore(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\), MAX\(detected_at\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, nil))
	mock.ExpectQuery(`GROUP BY animal_label`).
		WillReturnRows(sqlmock.NewRows([]string{"animal_label", "count"}))
	mock.ExpectQuery(`WHERE location IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"location", "count"}))

	agg, err := repo.AggregateSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, agg.Total)
	assert.Empty(t, agg.AnimalCounts)
	assert.Empty(t, agg.LocationCounts)
	assert.Nil(t, agg.MostRecent)
}
