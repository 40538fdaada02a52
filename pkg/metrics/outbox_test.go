package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)

	m.IncPublished("booking_activity_recorded")
	m.IncPublished("booking_activity_recorded")
	m.IncFailed("booking_created")
	m.IncDeadLettered("")
	m.SetBacklog(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.published.WithLabelValues("booking_activity_recorded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failed.WithLabelValues("booking_created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deadLettered.WithLabelValues("unknown")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.backlog))
}

func TestNilOutboxMetricsAreNoops(t *testing.T) {
	var m *OutboxMetrics
	m.IncPublished("x")
	m.SetBacklog(1)
	NewOutboxMetrics(nil).IncDeadLettered("max_attempts")
}

func TestHandlerServesGatherer(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewOutboxMetrics(reg).SetBacklog(3)
	h := Handler(reg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "settisfy_outbox_backlog 3")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
