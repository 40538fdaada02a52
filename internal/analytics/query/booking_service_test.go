package query

import (
	"testing"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
)

func TestValidateRequest(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		req  types.BookingQueryRequest
		ok   bool
	}{
		{"missing bounds", types.BookingQueryRequest{}, false},
		{"inverted", types.BookingQueryRequest{Start: start, End: start.Add(-time.Hour)}, false},
		{"too wide", types.BookingQueryRequest{Start: start, End: start.Add(400 * 24 * time.Hour)}, false},
		{"month", types.BookingQueryRequest{Start: start, End: start.AddDate(0, 1, 0)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequest(tc.req)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !tc.ok && !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewBookingServiceRequiresClient(t *testing.T) {
	if _, err := NewBookingService(nil); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestTotalsParamsCarryDisputeOpeners(t *testing.T) {
	params := totalsParams(baseParams(types.BookingQueryRequest{Start: time.Now(), End: time.Now()}))
	if len(params) != 5 {
		t.Fatalf("expected 5 params, got %d", len(params))
	}
	openers, ok := params[4].Value.([]string)
	if !ok || len(openers) != 2 {
		t.Fatalf("unexpected dispute openers %v", params[4].Value)
	}
}
