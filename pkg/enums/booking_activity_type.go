package enums

import "fmt"

// BookingActivityType identifies an entry in a booking timeline.
type BookingActivityType string

const (
	// initial booking
	ActivityQuoteCreated          BookingActivityType = "QUOTE_CREATED"
	ActivityNotesToSettlerUpdated BookingActivityType = "NOTES_TO_SETTLER_UPDATED"
	ActivitySettlerAccept         BookingActivityType = "SETTLER_ACCEPT"
	ActivitySettlerSelected       BookingActivityType = "SETTLER_SELECTED"

	// admin
	ActivityBookingApproved           BookingActivityType = "BOOKING_APPROVED"
	ActivityBookingRejected           BookingActivityType = "BOOKING_REJECTED"
	ActivityPaymentReleasedToSettler  BookingActivityType = "PAYMENT_RELEASED_TO_SETTLER"
	ActivityPaymentReleasedToCustomer BookingActivityType = "PAYMENT_RELEASED_TO_CUSTOMER"

	// active service
	ActivitySettlerServiceStart      BookingActivityType = "SETTLER_SERVICE_START"
	ActivitySettlerServiceEnd        BookingActivityType = "SETTLER_SERVICE_END"
	ActivitySettlerEvidenceSubmitted BookingActivityType = "SETTLER_EVIDENCE_SUBMITTED"
	ActivitySettlerEvidenceUpdated   BookingActivityType = "SETTLER_EVIDENCE_UPDATED"

	// incompletion flow
	ActivityJobCompleted                      BookingActivityType = "JOB_COMPLETED"
	ActivityJobIncomplete                     BookingActivityType = "JOB_INCOMPLETE"
	ActivityCustomerJobIncompleteUpdated      BookingActivityType = "CUSTOMER_JOB_INCOMPLETE_UPDATED"
	ActivityCustomerRejectIncompletionResolve BookingActivityType = "CUSTOMER_REJECT_INCOMPLETION_RESOLVE"
	ActivitySettlerResolveIncompletion        BookingActivityType = "SETTLER_RESOLVE_INCOMPLETION"
	ActivitySettlerUpdateIncompletionEvidence BookingActivityType = "SETTLER_UPDATE_INCOMPLETION_EVIDENCE"
	ActivitySettlerRejectIncompletion         BookingActivityType = "SETTLER_REJECT_INCOMPLETION"
	ActivityCustomerConfirmCompletion         BookingActivityType = "CUSTOMER_CONFIRM_COMPLETION"

	// cooldown flow
	ActivityCooldownReportSubmitted           BookingActivityType = "COOLDOWN_REPORT_SUBMITTED"
	ActivityCustomerCooldownReportUpdated     BookingActivityType = "CUSTOMER_COOLDOWN_REPORT_UPDATED"
	ActivitySettlerResolveCooldownReport      BookingActivityType = "SETTLER_RESOLVE_COOLDOWN_REPORT"
	ActivitySettlerUpdateCooldownEvidence     BookingActivityType = "SETTLER_UPDATE_COOLDOWN_REPORT_EVIDENCE"
	ActivityCustomerCooldownReportNotResolved BookingActivityType = "CUSTOMER_COOLDOWN_REPORT_NOT_RESOLVED"
	ActivityCooldownReportCompleted           BookingActivityType = "COOLDOWN_REPORT_COMPLETED"
	ActivitySettlerRejectCooldownReport       BookingActivityType = "SETTLER_REJECT_COOLDOWN_REPORT"

	// final
	ActivityBookingCompleted BookingActivityType = "BOOKING_COMPLETED"
	ActivityBookingCancelled BookingActivityType = "BOOKING_CANCELLED"
)

var validBookingActivityTypes = []BookingActivityType{
	ActivityQuoteCreated,
	ActivityNotesToSettlerUpdated,
	ActivitySettlerAccept,
	ActivitySettlerSelected,
	ActivityBookingApproved,
	ActivityBookingRejected,
	ActivityPaymentReleasedToSettler,
	ActivityPaymentReleasedToCustomer,
	ActivitySettlerServiceStart,
	ActivitySettlerServiceEnd,
	ActivitySettlerEvidenceSubmitted,
	ActivitySettlerEvidenceUpdated,
	ActivityJobCompleted,
	ActivityJobIncomplete,
	ActivityCustomerJobIncompleteUpdated,
	ActivityCustomerRejectIncompletionResolve,
	ActivitySettlerResolveIncompletion,
	ActivitySettlerUpdateIncompletionEvidence,
	ActivitySettlerRejectIncompletion,
	ActivityCustomerConfirmCompletion,
	ActivityCooldownReportSubmitted,
	ActivityCustomerCooldownReportUpdated,
	ActivitySettlerResolveCooldownReport,
	ActivitySettlerUpdateCooldownEvidence,
	ActivityCustomerCooldownReportNotResolved,
	ActivityCooldownReportCompleted,
	ActivitySettlerRejectCooldownReport,
	ActivityBookingCompleted,
	ActivityBookingCancelled,
}

// BookingActivityTypes returns every known activity type.
func BookingActivityTypes() []BookingActivityType {
	out := make([]BookingActivityType, len(validBookingActivityTypes))
	copy(out, validBookingActivityTypes)
	return out
}

// String implements fmt.Stringer.
func (a BookingActivityType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known BookingActivityType.
func (a BookingActivityType) IsValid() bool {
	for _, candidate := range validBookingActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseBookingActivityType converts raw input into a BookingActivityType.
func ParseBookingActivityType(value string) (BookingActivityType, error) {
	for _, candidate := range validBookingActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking activity type %q", value)
}
