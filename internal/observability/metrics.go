package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "tutorlog"

// Metrics owns its registry so that several instances (tests) can coexist.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	summaries      *prometheus.CounterVec
	summaryRecords prometheus.Histogram
	evaluations    *prometheus.CounterVec
	sessions       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "http", "requests_total"),
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prometheus.BuildFQName(metricsNamespace, "http", "request_duration_seconds"),
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "http", "inflight_requests"),
			Help: "HTTP requests currently being served",
		}),
		summaries: f.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "evaluation", "summaries_total"),
			Help: "Evaluation summaries served, by cache outcome (hit, miss)",
		}, []string{"cache"}),
		summaryRecords: f.NewHistogram(prometheus.HistogramOpts{
			Name:    prometheus.BuildFQName(metricsNamespace, "evaluation", "summary_records"),
			Help:    "Number of evaluation records aggregated per computed summary",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 75, 100},
		}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "evaluation", "recorded_total"),
			Help: "Evaluation records stored, by outcome",
		}, []string{"evaluation"}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "session", "starts_total"),
			Help: "Learning session start calls, by result (created, resumed)",
		}, []string{"result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncSummaryHit() {
	if m != nil {
		m.summaries.WithLabelValues("hit").Inc()
	}
}

// ObserveSummaryMiss counts a computed summary and the records it aggregated.
func (m *Metrics) ObserveSummaryMiss(records int) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues("miss").Inc()
	m.summaryRecords.Observe(float64(records))
}

func (m *Metrics) IncEvaluation(evaluation string) {
	if m != nil {
		m.evaluations.WithLabelValues(evaluation).Inc()
	}
}

func (m *Metrics) IncSessionStart(created bool) {
	if m == nil {
		return
	}
	result := "resumed"
	if created {
		result = "created"
	}
	m.sessions.WithLabelValues(result).Inc()
}
