package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 默认/最大列表条数
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// AlertsRepository 告警仓库
// 告警入库后不可变：仓库只提供插入和查询，不提供更新/删除
type AlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertsRepository 创建告警仓库
func NewAlertsRepository(db *sql.DB, logger *zap.Logger) *AlertsRepository {
	return &AlertsRepository{
		db:     db,
		logger: logger,
	}
}

const alertColumns = `
			alert_id,
			animal_label,
			confidence,
			image_ref,
			location,
			latitude,
			longitude,
			detected_at`

// Insert 插入一条告警
// animal_label 或 confidence 缺失时返回 ValidationError，不产生任何写入；
// detected_at 缺失时取当前时间
func (r *AlertsRepository) Insert(ctx context.Context, in *domain.AlertInput) (*domain.Alert, error) {
	if in == nil {
		return nil, &domain.ValidationError{Field: "body", Reason: "is required"}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	alert := &domain.Alert{
		ID:          uuid.New().String(),
		AnimalLabel: in.AnimalLabel,
		Confidence:  *in.Confidence,
		ImageRef:    in.ImageRef,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if in.DetectedAt != nil {
		alert.DetectedAt = *in.DetectedAt
	} else {
		alert.DetectedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO alerts (
			alert_id,
			animal_label,
			confidence,
			image_ref,
			location,
			latitude,
			longitude,
			detected_at,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.AnimalLabel,
		alert.Confidence,
		alert.ImageRef,
		alert.Location,
		alert.Latitude,
		alert.Longitude,
		alert.DetectedAt,
	)
	if err != nil {
		return nil, &domain.StoreError{Op: "insert alert", Err: err}
	}

	return alert, nil
}

// Get 根据 alert_id 获取单条告警
func (r *AlertsRepository) Get(ctx context.Context, id string) (*domain.Alert, error) {
	if id == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "is required"}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		WHERE alert_id = $1
	`, alertColumns)

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "alert", ID: id}
		}
		return nil, &domain.StoreError{Op: "get alert", Err: err}
	}

	return alert, nil
}

// ListRecent 按检测时间倒序获取最近的告警，同一时刻按入库顺序倒序
// limit <= 0 时取默认值，超过上限时截断
func (r *AlertsRepository) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		ORDER BY detected_at DESC, seq DESC
		LIMIT $1
	`, alertColumns)

	return r.queryAlerts(ctx, "list recent alerts", query, limit)
}

// CountInRange 统计 start <= detected_at <= end 的告警数量（闭区间）
func (r *AlertsRepository) CountInRange(ctx context.Context, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM alerts
		WHERE detected_at >= $1
		  AND detected_at <= $2
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, start, end).Scan(&count); err != nil {
		return 0, &domain.StoreError{Op: "count alerts in range", Err: err}
	}

	return count, nil
}

// ListInRange 获取闭区间内的全部告警，按检测时间升序
func (r *AlertsRepository) ListInRange(ctx context.Context, start, end time.Time) ([]domain.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		WHERE detected_at >= $1
		  AND detected_at <= $2
		ORDER BY detected_at ASC, seq ASC
	`, alertColumns)

	return r.queryAlerts(ctx, "list alerts in range", query, start, end)
}

// ListAll 获取全部告警快照，按检测时间升序
// 数据量大时优先走 AggregateSummary，这里保留给导出等确实需要整表的场景
func (r *AlertsRepository) ListAll(ctx context.Context) ([]domain.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		ORDER BY detected_at ASC, seq ASC
	`, alertColumns)

	return r.queryAlerts(ctx, "list all alerts", query)
}

// CountByAnimalInRange 按动物分组统计闭区间内的告警数量
// 没有出现的动物不会出现在结果里（不产生零值项）
func (r *AlertsRepository) CountByAnimalInRange(ctx context.Context, start, end time.Time) (map[string]int, error) {
	query := `
		SELECT animal_label, COUNT(*)
		FROM alerts
		WHERE detected_at >= $1
		  AND detected_at <= $2
		GROUP BY animal_label
	`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, &domain.StoreError{Op: "count alerts by animal", Err: err}
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, &domain.StoreError{Op: "count alerts by animal", Err: err}
		}
		counts[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "count alerts by animal", Err: err}
	}

	return counts, nil
}

// AggregateSummary 在数据库侧完成摘要聚合（总数、分组计数、最近时间），
// 避免每次摘要请求都把整张告警表拉到内存里
func (r *AlertsRepository) AggregateSummary(ctx context.Context) (*domain.SummaryAggregate, error) {
	agg := &domain.SummaryAggregate{
		AnimalCounts:   map[string]int{},
		LocationCounts: map[string]int{},
	}

	var mostRecent sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(detected_at) FROM alerts`,
	).Scan(&agg.Total, &mostRecent)
	if err != nil {
		return nil, &domain.StoreError{Op: "aggregate summary totals", Err: err}
	}
	if mostRecent.Valid {
		t := mostRecent.Time
		agg.MostRecent = &t
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT animal_label, COUNT(*) FROM alerts GROUP BY animal_label`,
	)
	if err != nil {
		return nil, &domain.StoreError{Op: "aggregate summary animals", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, &domain.StoreError{Op: "aggregate summary animals", Err: err}
		}
		agg.AnimalCounts[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "aggregate summary animals", Err: err}
	}

	// 位置为 NULL 的告警不参与位置统计
	locRows, err := r.db.QueryContext(ctx,
		`SELECT location, COUNT(*) FROM alerts WHERE location IS NOT NULL GROUP BY location`,
	)
	if err != nil {
		return nil, &domain.StoreError{Op: "aggregate summary locations", Err: err}
	}
	defer locRows.Close()
	for locRows.Next() {
		var label string
		var count int
		if err := locRows.Scan(&label, &count); err != nil {
			return nil, &domain.StoreError{Op: "aggregate summary locations", Err: err}
		}
		agg.LocationCounts[label] = count
	}
	if err := locRows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "aggregate summary locations", Err: err}
	}

	return agg, nil
}

// queryAlerts 通用多行查询
func (r *AlertsRepository) queryAlerts(ctx context.Context, op, query string, args ...interface{}) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: op, Err: err}
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: op, Err: err}
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: op, Err: err}
	}

	return alerts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAlert 扫描一行告警记录，处理可空字段
func scanAlert(row rowScanner) (*domain.Alert, error) {
	var alert domain.Alert
	var imageRef, location sql.NullString
	var latitude, longitude sql.NullFloat64

	err := row.Scan(
		&alert.ID,
		&alert.AnimalLabel,
		&alert.Confidence,
		&imageRef,
		&location,
		&latitude,
		&longitude,
		&alert.DetectedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageRef.Valid {
		alert.ImageRef = &imageRef.String
	}
	if location.Valid {
		alert.Location = &location.String
	}
	if latitude.Valid {
		alert.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		alert.Longitude = &longitude.Float64
	}

	return &alert, nil
}
