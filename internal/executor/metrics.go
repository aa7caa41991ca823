package executor

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and histogram the executor records against
// for each dispatched operation. NewMetrics never returns nil, but a nil
// *Metrics passed explicitly is safe to use; every method is a no-op in that case, so callers that don't
// care about --metrics-addr don't have to thread a real registry through.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the executor's collectors against reg and returns a
// Metrics handle. Pass a fresh prometheus.NewRegistry() per process, or
// prometheus.DefaultRegisterer to expose on the default /metrics path.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drft_operations_total",
			Help: "Count of executor operations by action and result.",
		}, []string{"action", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "drft_operation_duration_seconds",
			Help:    "Duration of executor operations by action.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
	}
	reg.MustRegister(m.operations, m.duration)
	return m
}

func (m *Metrics) observe(action string, success bool, seconds float64) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.operations.WithLabelValues(action, result).Inc()
	m.duration.WithLabelValues(action).Observe(seconds)
}
