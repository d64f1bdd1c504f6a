package httpapi

import (
	"net/http"
	"strings"

	"wildtrack-api/internal/service"

	"go.uber.org/zap"
)

// AnalyticsHandler 时间窗口分析 Handler
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandler 创建分析 Handler
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// Today GET /analytics/today 当日告警数
func (h *AnalyticsHandler) Today(w http.ResponseWriter, r *http.Request) {
	count, err := h.analytics.Today(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Last7Days GET /analytics/last7days 近 7 天按动物分组的告警数
func (h *AnalyticsHandler) Last7Days(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analytics.Last7Days(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// Range GET /analytics/range?startDate&endDate 任意闭区间告警数
func (h *AnalyticsHandler) Range(w http.ResponseWriter, r *http.Request) {
	startDate := strings.TrimSpace(r.URL.Query().Get("startDate"))
	endDate := strings.TrimSpace(r.URL.Query().Get("endDate"))

	count, err := h.analytics.Range(r.Context(), startDate, endDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
