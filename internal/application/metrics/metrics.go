package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application lifecycle module.
// Tracks transition outcomes per target status and critical path durations.
type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	TransitionsDenied  *prometheus.CounterVec
	CounterOffers      prometheus.Counter
	TimelineAppends    prometheus.Counter
	TransitionDuration prometheus.Histogram
	BundleDuration     prometheus.Histogram
}

// New creates a Metrics instance with all lifecycle metrics registered.
func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origo_status_transitions_total",
			Help: "Completed status transitions by target status",
		}, []string{"target"}),
		TransitionsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origo_status_transitions_denied_total",
			Help: "Rejected status transitions by failure class",
		}, []string{"reason"}),
		CounterOffers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "origo_counter_offers_total",
			Help: "Total number of counter-offers issued",
		}),
		TimelineAppends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "origo_timeline_appends_total",
			Help: "Total number of timeline entries appended",
		}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "origo_status_transition_duration_seconds",
			Help:    "Duration of guarded status transitions including the lock wait",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BundleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "origo_review_bundle_duration_seconds",
			Help:    "Duration of review bundle assembly (parallel fan-out reads)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementTransition records a completed transition into the target status.
func (m *Metrics) IncrementTransition(target string) {
	m.TransitionsTotal.WithLabelValues(target).Inc()
}

// IncrementDenied records a transition rejected by the guard or gate.
func (m *Metrics) IncrementDenied(reason string) {
	m.TransitionsDenied.WithLabelValues(reason).Inc()
}

// ObserveTransition records the duration of a Transition operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}

// ObserveBundle records the duration of a ReviewBundle assembly.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveBundle(start time.Time) {
	m.BundleDuration.Observe(time.Since(start).Seconds())
}
