package bookings

import (
	"time"

	"github.com/DevStdio379/settisfy-web/internal/evidence"
	"github.com/DevStdio379/settisfy-web/internal/lifecycle"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput carries a booking handed over by checkout. UserID is only read
// when an admin creates a booking on a customer's behalf.
type CreateInput struct {
	UserID          *uuid.UUID
	SelectedDate    time.Time
	Address         types.Address
	FirstName       string
	LastName        string
	Catalogue       types.Catalogue
	Addons          []types.DynamicOption
	Total           decimal.Decimal
	PaymentMethod   string
	PaymentIntentID *string
	PaymentStatus   *string
	NotesToSettler  *string
}

// ListParams filters a booking listing.
type ListParams struct {
	Status *enums.BookingStatus
	Cursor string
	Limit  int
}

// RejectInput carries the admin's reason for sending a booking back.
type RejectInput struct {
	Version int64
	Reason  string
}

// AcceptInput is a settler's bid with one of their services.
type AcceptInput struct {
	Version          int64
	SettlerServiceID uuid.UUID
}

// SelectAcceptorInput picks the winning bid.
type SelectAcceptorInput struct {
	Version          int64
	SettlerID        uuid.UUID
	SettlerServiceID uuid.UUID
}

// NotesInput replaces the customer's notes to the settler.
type NotesInput struct {
	Version int64
	Notes   string
	Images  evidence.Input
}

// StartServiceInput carries the code the customer reads out on site.
type StartServiceInput struct {
	Version int64
	Code    string
}

// QuoteInput is the settler's manual quote for extra work.
type QuoteInput struct {
	Version     int64
	Description string
	Price       decimal.Decimal
}

// EvidenceInput is the settler's proof of work. CompletedAddons names the
// sub-option labels that were done.
type EvidenceInput struct {
	Version              int64
	Remark               string
	Images               evidence.Input
	CompletedAddons      []string
	ManualQuoteCompleted bool
}

// DisputeAction is a step in an incompletion or cooldown dispute.
type DisputeAction string

const (
	DisputeReport           DisputeAction = "report"
	DisputeResolve          DisputeAction = "resolve"
	DisputeReject           DisputeAction = "reject"
	DisputeRejectResolution DisputeAction = "reject_resolution"
	DisputeConfirm          DisputeAction = "confirm"
)

// DisputeInput drives one dispute step.
type DisputeInput struct {
	Version int64
	Kind    lifecycle.DisputeKind
	Action  DisputeAction
	Remark  string
	Images  evidence.Input
}

// CancelInput records why a booking was cancelled.
type CancelInput struct {
	Version int64
	Reasons []string
	Text    string
	Images  evidence.Input
}

// Recipient is the party a payment release goes to.
type Recipient string

const (
	RecipientSettler  Recipient = "settler"
	RecipientCustomer Recipient = "customer"
)

// ReleaseInput records money moved outside the platform.
type ReleaseInput struct {
	Version   int64
	Recipient Recipient
	Amount    decimal.Decimal
	Images    evidence.Input
}
