package lifecycle

import (
	"strings"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
)

// StatusDisplay is the human facing rendering of a booking status.
type StatusDisplay struct {
	Label string `json:"label"`
	Badge string `json:"badge"`
}

// UnknownStatus is returned for codes outside the known domain.
var UnknownStatus = StatusDisplay{Label: "Unknown", Badge: "bg-light text-dark"}

var statusDisplays = map[enums.BookingStatus]StatusDisplay{
	enums.BookingStatusVerifyBooking:         {Label: "Verify Booking", Badge: "bg-warning"},
	enums.BookingStatusBroadcasting:          {Label: "Broadcasting", Badge: "bg-secondary"},
	enums.BookingStatusSettlerAccepted:       {Label: "Settler Accepted", Badge: "bg-warning"},
	enums.BookingStatusSettlerAssigned:       {Label: "Settler Assigned", Badge: "bg-secondary"},
	enums.BookingStatusServiceStarted:        {Label: "In Progress", Badge: "bg-secondary"},
	enums.BookingStatusServiceEnded:          {Label: "In Progress", Badge: "bg-secondary"},
	enums.BookingStatusFinishedService:       {Label: "Finished Service", Badge: "bg-secondary"},
	enums.BookingStatusWarrantyPeriod:        {Label: "Warranty Period", Badge: "bg-secondary"},
	enums.BookingStatusServiceCompleted:      {Label: "Service Completed", Badge: "bg-success"},
	enums.BookingStatusQuoteUpdated:          {Label: "Quote Updated", Badge: "bg-secondary"},
	enums.BookingStatusIncompletionReported:  {Label: "Incompletion Reported", Badge: "bg-danger"},
	enums.BookingStatusIncompletionRejected:  {Label: "Incompletion Report Rejected", Badge: "bg-danger"},
	enums.BookingStatusIncompletionResolving: {Label: "Resolving Incompletion Report", Badge: "bg-secondary"},
	enums.BookingStatusWarrantyIssueReported: {Label: "Warranty Period Issue Reported", Badge: "bg-danger"},
	enums.BookingStatusWarrantyIssueRejected: {Label: "Warranty Period Issue Rejected", Badge: "bg-danger"},
	enums.BookingStatusWarrantyIssueResolved: {Label: "Warranty Period Issue Resolved", Badge: "bg-secondary"},
	enums.BookingStatusReviewSubmitted:       {Label: "Review Submitted", Badge: "bg-success"},
	enums.BookingStatusCancelled:             {Label: "Booking Cancelled", Badge: "bg-danger"},
}

// Describe maps a status code to its label and badge. It never fails.
func Describe(status enums.BookingStatus) StatusDisplay {
	if display, ok := statusDisplays[status]; ok {
		return display
	}
	return UnknownStatus
}

var activityLabels = map[enums.BookingActivityType]string{
	enums.ActivityQuoteCreated:                      "Quote Created",
	enums.ActivityNotesToSettlerUpdated:             "Notes to Settler Updated",
	enums.ActivitySettlerAccept:                     "Settler Accepted",
	enums.ActivitySettlerSelected:                   "Settler Selected",
	enums.ActivityBookingApproved:                   "Booking Approved",
	enums.ActivityBookingRejected:                   "Booking Rejected",
	enums.ActivityPaymentReleasedToSettler:          "Payment Released to Settler",
	enums.ActivityPaymentReleasedToCustomer:         "Payment Refunded to Customer",
	enums.ActivitySettlerServiceStart:               "Service Started",
	enums.ActivitySettlerServiceEnd:                 "Service Completed",
	enums.ActivitySettlerEvidenceSubmitted:          "Completion Evidence Submitted",
	enums.ActivitySettlerEvidenceUpdated:            "Completion Evidence Updated",
	enums.ActivityJobCompleted:                      "Customer marked job as completed",
	enums.ActivityJobIncomplete:                     "Customer marked job as incomplete",
	enums.ActivityCustomerJobIncompleteUpdated:      "Customer updated incompletion report",
	enums.ActivityCustomerRejectIncompletionResolve: "Customer rejected incompletion resolution",
	enums.ActivitySettlerResolveIncompletion:        "Settler choose to resolve incompletion",
	enums.ActivitySettlerUpdateIncompletionEvidence: "Settler updated incompletion resolution evidence",
	enums.ActivitySettlerRejectIncompletion:         "Settler rejected incompletion report",
	enums.ActivityCustomerConfirmCompletion:         "Customer confirmed completion",
	enums.ActivityCooldownReportSubmitted:           "Cooldown report submitted",
	enums.ActivityCustomerCooldownReportUpdated:     "Customer updated cooldown report",
	enums.ActivitySettlerResolveCooldownReport:      "Settler choose to resolve cooldown report",
	enums.ActivitySettlerUpdateCooldownEvidence:     "Settler updated cooldown evidence",
	enums.ActivityCustomerCooldownReportNotResolved: "Customer marked cooldown resolution as not resolved",
	enums.ActivityCooldownReportCompleted:           "Cooldown report completed",
	enums.ActivitySettlerRejectCooldownReport:       "Settler rejected cooldown report",
	enums.ActivityBookingCompleted:                  "Booking completed",
	enums.ActivityBookingCancelled:                  "Booking cancelled",
}

// ActivityLabel returns the timeline label for an activity type, falling back
// to the entry message and then to a generic label.
func ActivityLabel(activityType enums.BookingActivityType, message string) string {
	if label, ok := activityLabels[activityType]; ok {
		return label
	}
	if msg := strings.TrimSpace(message); msg != "" {
		return msg
	}
	return "Activity"
}
