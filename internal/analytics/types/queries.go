package types

import "time"

// BookingQueryRequest bounds a booking report to an occurred_at window.
type BookingQueryRequest struct {
	Start time.Time
	End   time.Time
}

// TimeSeriesPoint describes a single date/value pair returned by the query service.
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// LabelValue represents a top-N entry such as an activity type or catalogue service.
type LabelValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// BookingQueryResponse wraps the booking KPIs for the admin dashboard.
type BookingQueryResponse struct {
	CreatedSeries          []TimeSeriesPoint `json:"created"`
	CompletedSeries        []TimeSeriesPoint `json:"completed"`
	CancelledSeries        []TimeSeriesPoint `json:"cancelled"`
	BookedValueCents       []TimeSeriesPoint `json:"booked_value_cents"`
	TopActivities          []LabelValue      `json:"top_activities"`
	TopCatalogueServices   []LabelValue      `json:"top_catalogue_services"`
	ReleasedToSettlerCents int64             `json:"released_to_settler_cents"`
	RefundedCents          int64             `json:"refunded_cents"`
	DisputesOpened         int64             `json:"disputes_opened"`
}
