package enums

import (
	"fmt"
	"strconv"
	"strings"
)

// BookingStatus is the numeric lifecycle phase of a booking. Sub-phases use
// one decimal place (0.1, 8.2, ...), so codes are compared as exact literals.
type BookingStatus float64

const (
	BookingStatusVerifyBooking         BookingStatus = 0.1
	BookingStatusBroadcasting          BookingStatus = 0
	BookingStatusSettlerAccepted       BookingStatus = 0.2
	BookingStatusSettlerAssigned       BookingStatus = 1
	BookingStatusServiceStarted        BookingStatus = 2
	BookingStatusServiceEnded          BookingStatus = 3
	BookingStatusFinishedService       BookingStatus = 4
	BookingStatusWarrantyPeriod        BookingStatus = 5
	BookingStatusServiceCompleted      BookingStatus = 6
	BookingStatusQuoteUpdated          BookingStatus = 7
	BookingStatusIncompletionReported  BookingStatus = 8
	BookingStatusIncompletionRejected  BookingStatus = 8.1
	BookingStatusIncompletionResolving BookingStatus = 8.2
	BookingStatusWarrantyIssueReported BookingStatus = 9
	BookingStatusWarrantyIssueRejected BookingStatus = 9.1
	BookingStatusWarrantyIssueResolved BookingStatus = 9.2
	BookingStatusReviewSubmitted       BookingStatus = 10
	BookingStatusCancelled             BookingStatus = 11
)

var validBookingStatuses = []BookingStatus{
	BookingStatusVerifyBooking,
	BookingStatusBroadcasting,
	BookingStatusSettlerAccepted,
	BookingStatusSettlerAssigned,
	BookingStatusServiceStarted,
	BookingStatusServiceEnded,
	BookingStatusFinishedService,
	BookingStatusWarrantyPeriod,
	BookingStatusServiceCompleted,
	BookingStatusQuoteUpdated,
	BookingStatusIncompletionReported,
	BookingStatusIncompletionRejected,
	BookingStatusIncompletionResolving,
	BookingStatusWarrantyIssueReported,
	BookingStatusWarrantyIssueRejected,
	BookingStatusWarrantyIssueResolved,
	BookingStatusReviewSubmitted,
	BookingStatusCancelled,
}

// BookingStatuses returns every known status in display order.
func BookingStatuses() []BookingStatus {
	out := make([]BookingStatus, len(validBookingStatuses))
	copy(out, validBookingStatuses)
	return out
}

// String renders the code the way clients send it ("0.1", "8", ...).
func (s BookingStatus) String() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// IsValid reports whether the value is a known BookingStatus.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no lifecycle transition leaves the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusServiceCompleted || s == BookingStatusCancelled
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid booking status %q", value)
	}
	status := BookingStatus(parsed)
	if !status.IsValid() {
		return 0, fmt.Errorf("invalid booking status %q", value)
	}
	return status, nil
}
