package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadmore_ledger_records_total",
			Help: "Total number of pages recorded in the ledger",
		},
		[]string{"backend"}, // "memory", "redis"
	)

	ledgerHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadmore_ledger_hits_total",
			Help: "Total number of ledger checks that found the page already loaded",
		},
		[]string{"backend"},
	)

	ledgerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadmore_ledger_errors_total",
			Help: "Total number of ledger backend errors",
		},
		[]string{"operation"}, // "is_loaded", "record", "reset"
	)
)
