package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the reporting API.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Report metrics
	ReportsCreated  *prometheus.CounterVec
	ReportsDeleted  prometheus.Counter
	ResultsLatency  *prometheus.HistogramVec
	ResultsPages    prometheus.Counter
	ResultsCampaigns *prometheus.CounterVec

	// Options cache metrics
	OptionsCacheHits   *prometheus.CounterVec
	OptionsCacheMisses *prometheus.CounterVec

	// Integration metrics
	SyncRuns    *prometheus.CounterVec
	SyncLatency *prometheus.HistogramVec
	CronToggles *prometheus.CounterVec

	// SSE metrics
	SSEClients       prometheus.Gauge
	SSEEventsDropped *prometheus.CounterVec

	// System metrics
	DBConnections *prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

var (
	// DefaultMetrics is the global metrics instance
	DefaultMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by path, method and status",
			},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_latency_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"path", "method"},
		),

		// Report metrics
		ReportsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_created_total",
				Help:      "Total report configurations created or updated",
			},
			[]string{"table"},
		),
		ReportsDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_deleted_total",
				Help:      "Total report configurations deleted",
			},
		),
		ResultsLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "results_latency_seconds",
				Help:      "Report result fetch and aggregation latency",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"status"},
		),
		ResultsPages: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "results_pages_total",
				Help:      "Total time-frame pages folded into result trees",
			},
		),
		ResultsCampaigns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "results_campaigns_total",
				Help:      "Total campaigns returned in result trees",
			},
			[]string{"platform"},
		),

		// Options cache metrics
		OptionsCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "options_cache_hits_total",
				Help:      "Filter option list cache hits",
			},
			[]string{"list"},
		),
		OptionsCacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "options_cache_misses_total",
				Help:      "Filter option list cache misses",
			},
			[]string{"list"},
		),

		// Integration metrics
		SyncRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Integration sync runs by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		SyncLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_latency_seconds",
				Help:      "Integration sync duration",
				Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"provider"},
		),
		CronToggles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cron_toggles_total",
				Help:      "Scheduled-sync toggle requests",
			},
			[]string{"provider", "enabled"},
		),

		// SSE metrics
		SSEClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sse_clients",
				Help:      "Currently connected SSE clients",
			},
		),
		SSEEventsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sse_events_dropped_total",
				Help:      "SSE events dropped because a client buffer was full",
			},
			[]string{"event"},
		),

		// System metrics
		DBConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"endpoint", "ip"},
		),
	}

	DefaultMetrics = m
	return m
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, latency time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(path, method).Observe(latency.Seconds())
}

// RecordReportCreated records a report upsert.
func (m *Metrics) RecordReportCreated(table string) {
	m.ReportsCreated.WithLabelValues(table).Inc()
}

// RecordReportDeleted records a report deletion.
func (m *Metrics) RecordReportDeleted() {
	m.ReportsDeleted.Inc()
}

// RecordResults records a result fetch with its per-platform campaign counts.
func (m *Metrics) RecordResults(status string, metaCampaigns, googleCampaigns, pages int, latency time.Duration) {
	m.ResultsLatency.WithLabelValues(status).Observe(latency.Seconds())
	m.ResultsPages.Add(float64(pages))
	m.ResultsCampaigns.WithLabelValues("meta").Add(float64(metaCampaigns))
	m.ResultsCampaigns.WithLabelValues("google").Add(float64(googleCampaigns))
}

// RecordOptionsCache records a cache lookup for an option list.
func (m *Metrics) RecordOptionsCache(list string, hit bool) {
	if hit {
		m.OptionsCacheHits.WithLabelValues(list).Inc()
	} else {
		m.OptionsCacheMisses.WithLabelValues(list).Inc()
	}
}

// RecordSyncRun records a finished integration sync.
func (m *Metrics) RecordSyncRun(provider, status string, duration time.Duration) {
	m.SyncRuns.WithLabelValues(provider, status).Inc()
	m.SyncLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCronToggle records a scheduled-sync toggle.
func (m *Metrics) RecordCronToggle(provider string, enabled bool) {
	m.CronToggles.WithLabelValues(provider, strconv.FormatBool(enabled)).Inc()
}

// RecordSSEDrop records a dropped SSE event.
func (m *Metrics) RecordSSEDrop(event string) {
	m.SSEEventsDropped.WithLabelValues(event).Inc()
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(endpoint, ip string) {
	m.RateLimitHits.WithLabelValues(endpoint, ip).Inc()
}
