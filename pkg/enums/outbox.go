package enums

import (
	"fmt"
	"slices"
)

// OutboxAggregateType is the aggregate_type column of outbox_events. Bookings
// are the only aggregate that emits events.
type OutboxAggregateType string

const AggregateBooking OutboxAggregateType = "booking"

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	if OutboxAggregateType(value) != AggregateBooking {
		return "", fmt.Errorf("invalid aggregate type %q", value)
	}
	return AggregateBooking, nil
}

// OutboxEventType is the event_type column of outbox_events and the
// event_type attribute on published messages.
type OutboxEventType string

const (
	EventBookingCreated          OutboxEventType = "booking_created"
	EventBookingActivityRecorded OutboxEventType = "booking_activity_recorded"
)

var bookingEventTypes = []OutboxEventType{EventBookingCreated, EventBookingActivityRecorded}

func (e OutboxEventType) IsValid() bool {
	return slices.Contains(bookingEventTypes, e)
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	if e := OutboxEventType(value); e.IsValid() {
		return e, nil
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
