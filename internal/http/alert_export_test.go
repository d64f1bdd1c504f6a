package httpapi

import (
	"bytes"
	"testing"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateAlertsExport_WritesHeaderAndRows(t *testing.T) {
	loc := "north ridge"
	lat, lng := 12.5, 77.1
	img := "s3://alerts/img1.jpg"
	alerts := []domain.Alert{
		{
			ID:          "alert-1",
			AnimalLabel: "tiger",
			Confidence:  0.92,
			ImageRef:    &img,
			Location:    &loc,
			Latitude:    &lat,
			Longitude:   &lng,
			DetectedAt:  time.Date(2026, 8, 22, 18, 0, 0, 0, time.UTC),
		},
		{
			ID:          "alert-2",
			AnimalLabel: "deer",
			Confidence:  0.61,
			DetectedAt:  time.Date(2026, 8, 23, 6, 30, 0, 0, time.UTC),
		},
	}

	data, err := GenerateAlertsExport(alerts)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Alerts")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, AlertsExportHeader, rows[0])

	assert.Equal(t, "alert-1", rows[1][0])
	assert.Equal(t, "tiger", rows[1][1])
	assert.Equal(t, "2026-08-22T18:00:00Z", rows[1][3])
	assert.Equal(t, "north ridge", rows[1][4])

	// 可选字段缺失时导出为空单元格
	assert.Equal(t, "alert-2", rows[2][0])
	assert.Equal(t, "deer", rows[2][1])
}

func TestGenerateAlertsExport_EmptyHistory(t *testing.T) {
	data, err := GenerateAlertsExport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Alerts")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, AlertsExportHeader, rows[0])
}
