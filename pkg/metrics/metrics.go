package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MatchMetrics records the outcome of payment observation matching.
type MatchMetrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMatchMetrics registers the matcher metrics on the provided registerer.
func NewMatchMetrics(reg prometheus.Registerer) *MatchMetrics {
	if reg == nil {
		return &MatchMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_attempts_total",
		Help: "Payment observation match attempts by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "match_duration_seconds",
		Help:    "Duration of match attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	reg.MustRegister(attempts, duration)
	return &MatchMetrics{attempts: attempts, duration: duration}
}

// Observe records one match attempt with its result label.
func (m *MatchMetrics) Observe(result string, duration time.Duration) {
	if m == nil || m.attempts == nil {
		return
	}
	label := normalizeLabel(result)
	m.attempts.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(duration.Seconds())
}

// SweepMetrics records metadata for expiry sweeps.
type SweepMetrics struct {
	duration prometheus.Histogram
	expired  prometheus.Counter
	failure  prometheus.Counter
}

// NewSweepMetrics registers the sweeper metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sweep_duration_seconds",
		Help:    "Duration of expiry sweeps in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_expired_orders_total",
		Help: "Orders transitioned to expired by the sweeper.",
	})
	failure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_failures_total",
		Help: "Failed expiry sweep runs.",
	})
	reg.MustRegister(duration, expired, failure)
	return &SweepMetrics{duration: duration, expired: expired, failure: failure}
}

// ObserveSweep records one sweep run and the number of orders it expired.
func (s *SweepMetrics) ObserveSweep(expired int64, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.Observe(duration.Seconds())
	s.expired.Add(float64(expired))
}

// IncFailure increments the failed sweep counter.
func (s *SweepMetrics) IncFailure() {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
