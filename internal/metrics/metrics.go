package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 服务级计数器，挂在 /metrics 上
var (
	AlertsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wildtrack_alerts_ingested_total",
		Help: "Total number of alerts accepted and persisted.",
	})

	AlertsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wildtrack_alerts_rejected_total",
		Help: "Total number of alert submissions rejected by validation.",
	})

	ChatRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wildtrack_chat_requests_total",
		Help: "Total number of chat questions received.",
	})

	ChatFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wildtrack_chat_fallbacks_total",
		Help: "Total number of chat replies served from the fallback path.",
	})
)
