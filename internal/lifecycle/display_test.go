package lifecycle

import (
	"testing"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
)

func TestDescribeCoversEveryStatus(t *testing.T) {
	for _, status := range enums.BookingStatuses() {
		if got := Describe(status); got == UnknownStatus {
			t.Fatalf("status %s has no display entry", status)
		}
	}
}

func TestDescribeKnownAndUnknown(t *testing.T) {
	cases := []struct {
		status enums.BookingStatus
		want   StatusDisplay
	}{
		{enums.BookingStatusVerifyBooking, StatusDisplay{Label: "Verify Booking", Badge: "bg-warning"}},
		{enums.BookingStatusServiceEnded, StatusDisplay{Label: "In Progress", Badge: "bg-secondary"}},
		{enums.BookingStatusCancelled, StatusDisplay{Label: "Booking Cancelled", Badge: "bg-danger"}},
		{enums.BookingStatus(42), UnknownStatus},
		{enums.BookingStatus(8.3), UnknownStatus},
	}
	for _, tc := range cases {
		if got := Describe(tc.status); got != tc.want {
			t.Fatalf("status %s: expected %+v got %+v", tc.status, tc.want, got)
		}
	}
}

func TestActivityLabelFallbacks(t *testing.T) {
	if got := ActivityLabel(enums.ActivitySettlerSelected, "ignored"); got != "Settler Selected" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := ActivityLabel(enums.BookingActivityType("LEGACY"), "Old entry"); got != "Old entry" {
		t.Fatalf("expected message fallback, got %q", got)
	}
	if got := ActivityLabel(enums.BookingActivityType("LEGACY"), "  "); got != "Activity" {
		t.Fatalf("expected generic fallback, got %q", got)
	}
	for _, activityType := range enums.BookingActivityTypes() {
		if got := ActivityLabel(activityType, ""); got == "Activity" {
			t.Fatalf("activity %s has no label", activityType)
		}
	}
}
