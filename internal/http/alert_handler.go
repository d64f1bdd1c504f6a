package httpapi

import (
	"net/http"

	"wildtrack-api/internal/domain"
	"wildtrack-api/internal/service"

	"go.uber.org/zap"
)

// AlertHandler 告警读写 Handler
type AlertHandler struct {
	alerts      service.AlertService
	recentLimit int
	logger      *zap.Logger
}

// NewAlertHandler 创建告警 Handler
func NewAlertHandler(alerts service.AlertService, recentLimit int, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		alerts:      alerts,
		recentLimit: recentLimit,
		logger:      logger,
	}
}

// CreateAlert POST /alert 入库一条告警
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var in domain.AlertInput
	if err := readBodyJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	alert, err := h.alerts.Create(r.Context(), &in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "alert stored",
		"id":      alert.ID,
	})
}

// ListRecentAlerts GET /alerts 最近告警（按检测时间倒序，默认 20 条）
func (h *AlertHandler) ListRecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), h.recentLimit)

	alerts, err := h.alerts.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

// GetAlert GET /alert/{id} 点查
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request, id string) {
	alert, err := h.alerts.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

// ExportAlerts GET /alerts/export 导出告警历史为 Excel
func (h *AlertHandler) ExportAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	data, err := GenerateAlertsExport(alerts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="alerts.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
