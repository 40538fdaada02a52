package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// BookingMetrics counts lifecycle activity written by the booking service.
type BookingMetrics struct {
	transitions    *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	conflicts      prometheus.Counter
	uploadFailures *prometheus.CounterVec
	released       *prometheus.CounterVec
}

// NewBookingMetrics registers the booking collectors; a nil registerer yields no-op metrics.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	m := &BookingMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settisfy_booking_transitions_total",
			Help: "Activities appended to booking timelines.",
		}, []string{"activity", "actor", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settisfy_booking_transitions_rejected_total",
			Help: "Lifecycle requests refused by the transition table.",
		}, []string{"activity", "from"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settisfy_booking_version_conflicts_total",
			Help: "Conditional booking writes that lost to a concurrent writer.",
		}),
		uploadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settisfy_evidence_upload_failures_total",
			Help: "Evidence images dropped because the upload failed.",
		}, []string{"purpose"}),
		released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settisfy_payment_released_amount_total",
			Help: "Sum of payment releases recorded, by recipient.",
		}, []string{"recipient"}),
	}
	reg.MustRegister(m.transitions, m.rejected, m.conflicts, m.uploadFailures, m.released)
	return m
}

func (m *BookingMetrics) ObserveTransition(activity, actor, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(activity, actor, to).Inc()
}

func (m *BookingMetrics) ObserveRejected(activity, from string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(activity, from).Inc()
}

func (m *BookingMetrics) IncConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *BookingMetrics) IncUploadFailure(purpose string) {
	if m == nil || m.uploadFailures == nil {
		return
	}
	m.uploadFailures.WithLabelValues(normalizeLabel(purpose)).Inc()
}

// AddReleased adds a release amount; the float conversion is for reporting only.
func (m *BookingMetrics) AddReleased(recipient string, amount decimal.Decimal) {
	if m == nil || m.released == nil || !amount.IsPositive() {
		return
	}
	m.released.WithLabelValues(recipient).Add(amount.InexactFloat64())
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return strings.ToLower(v)
}
