package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestBookingMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveTransition("SETTLER_SELECTED", "CUSTOMER", "1")
	m.ObserveTransition("SETTLER_SELECTED", "CUSTOMER", "1")
	m.ObserveRejected("JOB_COMPLETED", "0")
	m.IncConflict()
	m.IncUploadFailure("")
	m.AddReleased("settler", decimal.RequireFromString("97.50"))
	m.AddReleased("settler", decimal.Zero)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("SETTLER_SELECTED", "CUSTOMER", "1")); got != 2 {
		t.Fatalf("expected 2 transitions, got %f", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("JOB_COMPLETED", "0")); got != 1 {
		t.Fatalf("expected 1 rejection, got %f", got)
	}
	if got := testutil.ToFloat64(m.conflicts); got != 1 {
		t.Fatalf("expected 1 conflict, got %f", got)
	}
	if got := testutil.ToFloat64(m.uploadFailures.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected 1 upload failure, got %f", got)
	}
	if got := testutil.ToFloat64(m.released.WithLabelValues("settler")); got != 97.5 {
		t.Fatalf("expected 97.5 released, got %f", got)
	}
}

func TestNilBookingMetricsAreNoops(t *testing.T) {
	var m *BookingMetrics
	m.ObserveTransition("a", "b", "c")
	m.IncConflict()
	NewBookingMetrics(nil).AddReleased("customer", decimal.NewFromInt(1))
}
