package loadmore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for load cycles.
var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmore_loads_total",
		Help: "Total load cycles by result",
	}, []string{"result"}) // "ok", "fetch_error", "fragment_missing", "no_container", "splice_error"

	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loadmore_load_duration_seconds",
		Help:    "Duration of a complete fetch-and-splice cycle",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmore_trigger_notifications_total",
		Help: "Visibility notifications by outcome",
	}, []string{"outcome"}) // "idle", "not_visible", "no_params", "already_loaded", "ledger_error", "dispatched"

	clicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loadmore_clicks_total",
		Help: "Total load-more clicks",
	})
)
