// Package metrics exposes the Prometheus registry loadmore registers into.
// Metrics are defined in their respective packages (client, ledger,
// loadmore, pagination) via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by loadmore.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Fetch Metrics (pkg/client):
//   - loadmore_fetch_requests_total{status} (Counter): Page fetches by HTTP status
//   - loadmore_fetch_duration_seconds (Histogram): Page fetch duration
//   - loadmore_fetch_errors_total{class} (Counter): Fetch errors by class (client, server, network, unexpected)
//   - loadmore_fetch_bytes_total (Counter): Response bytes read
//
// Ledger Metrics (pkg/ledger):
//   - loadmore_ledger_records_total{backend} (Counter): Pages recorded
//   - loadmore_ledger_hits_total{backend} (Counter): Checks that found a page already loaded
//   - loadmore_ledger_errors_total{operation} (Counter): Backend errors
//
// Load Metrics (pkg/loadmore):
//   - loadmore_loads_total{result} (Counter): Fetch-and-splice cycles by result
//   - loadmore_load_duration_seconds (Histogram): Cycle duration
//   - loadmore_trigger_notifications_total{outcome} (Counter): Visibility notifications by outcome
//   - loadmore_clicks_total (Counter): Load-more clicks
//
// Expansion Metrics (pkg/pagination):
//   - loadmore_expansions_total{result} (Counter): Listing expansions by result
//   - loadmore_expanded_pages (Histogram): Pages appended per expansion
//
// Example Prometheus Queries:
//
//   # Load failure rate
//   sum(rate(loadmore_loads_total{result!="ok"}[5m])) / sum(rate(loadmore_loads_total[5m]))
//
//   # Duplicate auto-loads suppressed by the ledger
//   rate(loadmore_trigger_notifications_total{outcome="already_loaded"}[5m])
//
//   # P95 fetch latency
//   histogram_quantile(0.95, rate(loadmore_fetch_duration_seconds_bucket[5m]))
