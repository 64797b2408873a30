package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records metadata for recompute-and-persist cycles.
type SyncMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	coalesced *prometheus.CounterVec
}

// NewSyncMetrics registers the sync cycle metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_cycle_duration_seconds",
		Help:    "Duration of recompute-and-persist cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycle_success",
		Help: "Successful recompute-and-persist cycles.",
	}, []string{"trigger"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycle_failure",
		Help: "Failed recompute-and-persist cycles.",
	}, []string{"trigger"})
	coalesced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_trigger_coalesced",
		Help: "Triggers absorbed into an already-pending recompute.",
	}, []string{"trigger"})
	reg.MustRegister(duration, success, failure, coalesced)
	return &SyncMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		coalesced: coalesced,
	}
}

// ObserveDuration records the duration for the named trigger source.
func (s *SyncMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named trigger source.
func (s *SyncMetrics) IncSuccess(trigger string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncFailure increments the failure counter for the named trigger source.
func (s *SyncMetrics) IncFailure(trigger string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncCoalesced increments the coalesced-trigger counter.
func (s *SyncMetrics) IncCoalesced(trigger string) {
	if s == nil || s.coalesced == nil {
		return
	}
	s.coalesced.WithLabelValues(normalizeLabel(trigger)).Inc()
}

func normalizeLabel(trigger string) string {
	if trigger == "" {
		return "unknown"
	}
	return trigger
}
