package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"spc/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncValidations(schema string, outcome string)
	AddViolations(rule string, count int)
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	validationsTotal    *prometheus.CounterVec
	violationsTotal     *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncValidations(schema string, outcome string) {
	m.validationsTotal.WithLabelValues(schema, outcome).Inc()
}

func (m *MetricsProvider) AddViolations(rule string, count int) {
	m.violationsTotal.WithLabelValues(rule).Add(float64(count))
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spc_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spc_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		validationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spc_validations_total",
			Help: "Total number of validated documents by schema version and outcome",
		}, []string{"schema", "outcome"}),

		violationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spc_violations_total",
			Help: "Total number of schema violations by rule",
		}, []string{"rule"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "spc_persistence_duration_seconds",
			Help:    "Duration of statistics persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncValidations(_ string, _ string)                {}
func (n *noopMetrics) AddViolations(_ string, _ int)                    {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
