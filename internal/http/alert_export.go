package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"wildtrack-api/internal/domain"

	"github.com/xuri/excelize/v2"
)

// AlertsExportHeader 告警导出表头
var AlertsExportHeader = []string{
	"Alert ID",
	"Animal",
	"Confidence",
	"Detected At",
	"Location",
	"Latitude",
	"Longitude",
	"Image Reference",
}

// GenerateAlertsExport 生成告警历史导出 Excel 文件
// alerts 为空时只生成表头
func GenerateAlertsExport(alerts []domain.Alert) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Alerts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range AlertsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for i := range alerts {
		a := &alerts[i]
		row := i + 2
		values := []any{
			a.ID,
			a.AnimalLabel,
			a.Confidence,
			a.DetectedAt.Format(time.RFC3339),
			derefString(a.Location),
			derefFloat(a.Latitude),
			derefFloat(a.Longitude),
			derefString(a.ImageRef),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to build data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set data cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func derefString(s *string) any {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
