// Package metrics exposes Prometheus instrumentation for the verification
// workflows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DocumentReviews    *prometheus.CounterVec
	ReferenceChecks    *prometheus.CounterVec
	AccountChecks      *prometheus.CounterVec
	LedgerEntries      *prometheus.CounterVec
	CascadeTransitions prometheus.Counter
	ReviewDuration     prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		DocumentReviews: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origo_document_reviews_total",
			Help: "Document review decisions by outcome.",
		}, []string{"outcome"}),
		ReferenceChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origo_reference_checks_total",
			Help: "Reference call outcomes.",
		}, []string{"result"}),
		AccountChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origo_bank_account_checks_total",
			Help: "Bank account verification actions.",
		}, []string{"action"}),
		LedgerEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origo_data_verifications_total",
			Help: "Data verification ledger entries by status.",
		}, []string{"status"}),
		CascadeTransitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "origo_verification_cascades_total",
			Help: "Application status cascades triggered by verification outcomes.",
		}),
		ReviewDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "origo_verification_review_duration_seconds",
			Help:    "Latency of verification operations.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
	}
}

// IncrementDocumentReview records one review decision: approved, rejected,
// or unapproved.
func (m *Metrics) IncrementDocumentReview(outcome string) {
	m.DocumentReviews.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementReferenceCheck(result string) {
	m.ReferenceChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementAccountCheck(action string) {
	m.AccountChecks.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementLedgerEntry(status string) {
	m.LedgerEntries.WithLabelValues(status).Inc()
}

// IncrementCascade records an application status change triggered by a
// verification outcome rather than a direct request.
func (m *Metrics) IncrementCascade() {
	m.CascadeTransitions.Inc()
}

// ObserveReview records the duration of a verification operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReview(start time.Time) {
	m.ReviewDuration.Observe(time.Since(start).Seconds())
}
