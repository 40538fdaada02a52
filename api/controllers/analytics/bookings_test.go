package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

func TestBookingAnalyticsUsesPreset(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	clock = func() time.Time { return now }
	defer func() { clock = time.Now }()

	stub := &testAnalyticsService{
		response: &types.BookingQueryResponse{
			CreatedSeries:          []types.TimeSeriesPoint{{Date: "2026-01-09", Value: 4}},
			ReleasedToSettlerCents: 12000,
		},
	}

	handler := BookingAnalytics(stub, logger.New(logger.Options{ServiceName: "test"}))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/analytics/bookings?preset=7d", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if stub.period() != 7*24*time.Hour {
		t.Fatalf("expected 7d range, got %v", stub.period())
	}
	if !stub.last.End.Equal(now) {
		t.Fatalf("expected window to end now, got %v", stub.last.End)
	}

	var envelope struct {
		Data types.BookingQueryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.CreatedSeries) != 1 || envelope.Data.CreatedSeries[0].Value != 4 {
		t.Fatalf("unexpected created series: %+v", envelope.Data.CreatedSeries)
	}
	if envelope.Data.ReleasedToSettlerCents != 12000 {
		t.Fatalf("unexpected released total %d", envelope.Data.ReleasedToSettlerCents)
	}
}

func TestBookingAnalyticsExplicitRange(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := BookingAnalytics(stub, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/analytics/bookings?from=2026-02-01T00:00:00Z&to=2026-02-03T00:00:00Z", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if stub.period() != 48*time.Hour {
		t.Fatalf("expected 48h window, got %v", stub.period())
	}
}

func TestBookingAnalyticsRejectsBadRange(t *testing.T) {
	cases := []string{
		"/api/admin/v1/analytics/bookings?from=2026-02-01T00:00:00Z",
		"/api/admin/v1/analytics/bookings?from=2026-02-03T00:00:00Z&to=2026-02-01T00:00:00Z",
		"/api/admin/v1/analytics/bookings?preset=2y",
		"/api/admin/v1/analytics/bookings?from=2024-01-01T00:00:00Z&to=2026-01-01T00:00:00Z",
	}
	for _, target := range cases {
		stub := &testAnalyticsService{}
		resp := httptest.NewRecorder()
		BookingAnalytics(stub, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, resp.Code)
		}
		if stub.calls != 0 {
			t.Fatalf("%s: service should not be invoked", target)
		}
	}
}

func TestBookingAnalyticsMonthToDate(t *testing.T) {
	now := time.Date(2026, 3, 17, 9, 30, 0, 0, time.UTC)
	clock = func() time.Time { return now }
	defer func() { clock = time.Now }()

	stub := &testAnalyticsService{}
	resp := httptest.NewRecorder()
	BookingAnalytics(stub, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/v1/analytics/bookings?preset=mtd", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !stub.last.Start.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, stub.last.Start)
	}
}
