package bookings

import (
	"encoding/json"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/lifecycle"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserSummary is the customer profile shown next to a booking.
type UserSummary struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phoneNumber,omitempty"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
}

// Summary is one row of a booking listing.
type Summary struct {
	ID             uuid.UUID           `json:"id"`
	Version        int64               `json:"version"`
	UserID         uuid.UUID           `json:"userId"`
	Status         enums.BookingStatus `json:"status"`
	StatusLabel    string              `json:"statusLabel"`
	Badge          string              `json:"badge"`
	CatalogueTitle string              `json:"catalogueTitle"`
	SelectedDate   time.Time           `json:"selectedDate"`
	Address        string              `json:"address"`
	Total          decimal.Decimal     `json:"total"`
	TotalDisplay   string              `json:"totalDisplay"`
	SettlerName    string              `json:"settlerName,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// ListResult is a page of bookings with their customers keyed by id.
type ListResult struct {
	Items      []Summary              `json:"items"`
	NextCursor string                 `json:"nextCursor,omitempty"`
	Users      map[string]UserSummary `json:"users"`
}

// ActivityView is a labelled timeline entry.
type ActivityView struct {
	ID        uuid.UUID                 `json:"id"`
	Seq       int                       `json:"seq"`
	Type      enums.BookingActivityType `json:"type"`
	Label     string                    `json:"label"`
	Actor     enums.BookingActor        `json:"actor"`
	Timestamp time.Time                 `json:"timestamp"`
	Message   string                    `json:"message,omitempty"`
	Payload   json.RawMessage           `json:"payload,omitempty"`
}

// AcceptorView pairs a bid with its derived outcome.
type AcceptorView struct {
	types.Acceptor
	Outcome lifecycle.AcceptorOutcome `json:"outcome"`
}

// DisputeView is one dispute sub-machine and its evidence.
type DisputeView struct {
	Status            *enums.DisputeStatus `json:"status,omitempty"`
	Round             int                  `json:"round"`
	ReportImageURLs   []string             `json:"reportImageUrls,omitempty"`
	ReportRemark      *string              `json:"reportRemark,omitempty"`
	ResolvedImageURLs []string             `json:"resolvedImageUrls,omitempty"`
	ResolvedRemark    *string              `json:"resolvedRemark,omitempty"`
}

// CancellationView explains a cancelled booking.
type CancellationView struct {
	Reasons   []string            `json:"reasons"`
	Text      *string             `json:"text,omitempty"`
	ImageURLs []string            `json:"imageUrls,omitempty"`
	Actor     *enums.BookingActor `json:"actor,omitempty"`
}

// PaymentsView tracks money released outside the platform.
type PaymentsView struct {
	ReleasedToSettler       decimal.Decimal `json:"releasedToSettler"`
	SettlerPaymentImageURLs []string        `json:"settlerPaymentImageUrls,omitempty"`
	ReleasedToCustomer      decimal.Decimal `json:"releasedToCustomer"`
	CustomerRefundImageURLs []string        `json:"customerRefundImageUrls,omitempty"`
	Outstanding             decimal.Decimal `json:"outstanding"`
}

// AdminActions reflects the dashboard toggles for the current state.
type AdminActions struct {
	CanApprove       bool `json:"canApprove"`
	CanAssignSettler bool `json:"canAssignSettler"`
}

// Detail is the full read model of one booking.
type Detail struct {
	Summary
	Customer  *UserSummary `json:"customer,omitempty"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`

	SelectedAddress types.Address         `json:"selectedAddress"`
	Catalogue       types.Catalogue       `json:"catalogueService"`
	Addons          []types.DynamicOption `json:"addons"`
	PaymentMethod   string                `json:"paymentMethod"`
	PaymentIntentID *string               `json:"paymentIntentId,omitempty"`
	PaymentStatus   *string               `json:"paymentStatus,omitempty"`

	NotesToSettler          *string  `json:"notesToSettler,omitempty"`
	NotesToSettlerImageURLs []string `json:"notesToSettlerImageUrls,omitempty"`

	ManualQuoteDescription string          `json:"manualQuoteDescription,omitempty"`
	ManualQuotePrice       decimal.Decimal `json:"manualQuotePrice"`
	IsManualQuoteCompleted bool            `json:"isManualQuoteCompleted"`

	Acceptors        []AcceptorView `json:"acceptors"`
	SettlerID        *uuid.UUID     `json:"settlerId,omitempty"`
	SettlerServiceID *uuid.UUID     `json:"settlerServiceId,omitempty"`
	ServiceStartCode *string        `json:"serviceStartCode,omitempty"`
	ServiceEndCode   *string        `json:"serviceEndCode,omitempty"`

	SettlerEvidenceImageURLs []string `json:"settlerEvidenceImageUrls,omitempty"`
	SettlerEvidenceRemark    *string  `json:"settlerEvidenceRemark,omitempty"`

	Incompletion DisputeView       `json:"incompletion"`
	Cooldown     DisputeView       `json:"cooldown"`
	Cancellation *CancellationView `json:"cancellation,omitempty"`
	Payments     PaymentsView      `json:"payments"`

	WarrantyStartedAt *time.Time               `json:"warrantyStartedAt,omitempty"`
	Price             lifecycle.PriceBreakdown `json:"price"`
	Timeline          []ActivityView           `json:"timeline"`
	AllowedEvents     []string                 `json:"allowedEvents"`
	Actions           AdminActions             `json:"actions"`
}

func summarizeUser(user models.User) UserSummary {
	return UserSummary{
		ID:              user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Email:           user.Email,
		PhoneNumber:     user.PhoneNumber,
		ProfileImageURL: user.ProfileImageURL,
	}
}

// NewSummary renders the list row of a booking.
func NewSummary(b *models.Booking) Summary {
	display := lifecycle.Describe(b.Status)
	out := Summary{
		ID:             b.ID,
		Version:        b.Version,
		UserID:         b.UserID,
		Status:         b.Status,
		StatusLabel:    display.Label,
		Badge:          display.Badge,
		CatalogueTitle: b.CatalogueService.Val.Title,
		SelectedDate:   b.SelectedDate,
		Address:        b.SelectedAddress.Val.Display(),
		Total:          b.Total,
		TotalDisplay:   lifecycle.FormatRM(b.Total),
		CreatedAt:      b.CreatedAt,
	}
	if b.SettlerFirstName != nil {
		out.SettlerName = *b.SettlerFirstName
		if b.SettlerLastName != nil && *b.SettlerLastName != "" {
			out.SettlerName += " " + *b.SettlerLastName
		}
	}
	return out
}

// buildDetail renders a booking from its folded state. The status shown is
// always the fold, never the cached column.
func buildDetail(b *models.Booking, state lifecycle.State, fee decimal.Decimal, params *models.SystemParameter, actor enums.BookingActor) *Detail {
	summary := NewSummary(b)
	display := lifecycle.Describe(state.Status)
	summary.Status = state.Status
	summary.StatusLabel = display.Label
	summary.Badge = display.Badge

	d := &Detail{
		Summary:                  summary,
		FirstName:                b.FirstName,
		LastName:                 b.LastName,
		SelectedAddress:          b.SelectedAddress.Val,
		Catalogue:                b.CatalogueService.Val,
		Addons:                   b.Addons.Val,
		PaymentMethod:            b.PaymentMethod,
		PaymentIntentID:          b.PaymentIntentID,
		PaymentStatus:            b.PaymentStatus,
		NotesToSettler:           b.NotesToSettler,
		NotesToSettlerImageURLs:  b.NotesToSettlerImageURLs.Val,
		ManualQuoteDescription:   b.ManualQuoteDescription,
		ManualQuotePrice:         b.ManualQuotePrice,
		IsManualQuoteCompleted:   b.IsManualQuoteCompleted,
		SettlerID:                b.SettlerID,
		SettlerServiceID:         b.SettlerServiceID,
		ServiceStartCode:         b.ServiceStartCode,
		ServiceEndCode:           b.ServiceEndCode,
		SettlerEvidenceImageURLs: b.SettlerEvidenceImageURLs.Val,
		SettlerEvidenceRemark:    b.SettlerEvidenceRemark,
		WarrantyStartedAt:        b.WarrantyStartedAt,
		Incompletion: DisputeView{
			Status:            state.Incompletion,
			Round:             state.IncompletionRound,
			ReportImageURLs:   b.IncompletionReportImageURLs.Val,
			ReportRemark:      b.IncompletionReportRemark,
			ResolvedImageURLs: b.IncompletionResolvedImageURLs.Val,
			ResolvedRemark:    b.IncompletionResolvedRemark,
		},
		Cooldown: DisputeView{
			Status:            state.Cooldown,
			Round:             state.CooldownRound,
			ReportImageURLs:   b.CooldownReportImageURLs.Val,
			ReportRemark:      b.CooldownReportRemark,
			ResolvedImageURLs: b.CooldownResolvedImageURLs.Val,
			ResolvedRemark:    b.CooldownResolvedRemark,
		},
		Payments: PaymentsView{
			ReleasedToSettler:       b.ReleasedToSettler,
			SettlerPaymentImageURLs: b.SettlerPaymentImageURLs.Val,
			ReleasedToCustomer:      b.ReleasedToCustomer,
			CustomerRefundImageURLs: b.CustomerRefundImageURLs.Val,
			Outstanding:             b.Total.Sub(b.ReleasedToSettler).Sub(b.ReleasedToCustomer),
		},
		Price: lifecycle.Breakdown(lifecycle.PriceInput{
			BasePrice:              b.CatalogueService.Val.BasePrice,
			Addons:                 b.Addons.Val,
			PlatformFee:            fee,
			ManualQuoteDescription: b.ManualQuoteDescription,
			ManualQuotePrice:       b.ManualQuotePrice,
		}),
	}

	// the customer reads the start code out to the settler on site
	if actor == enums.BookingActorSettler {
		d.ServiceStartCode = nil
	}

	assignment := assignmentOf(b)
	d.Acceptors = make([]AcceptorView, 0, len(b.Acceptors.Val))
	for _, acceptor := range b.Acceptors.Val {
		d.Acceptors = append(d.Acceptors, AcceptorView{Acceptor: acceptor, Outcome: lifecycle.OutcomeFor(assignment, acceptor)})
	}

	if state.Status == enums.BookingStatusCancelled {
		d.Cancellation = &CancellationView{
			Reasons:   b.CancelReasons.Val,
			Text:      b.CancelReasonText,
			ImageURLs: b.CancelReasonImageURLs.Val,
			Actor:     b.CancelActor,
		}
	}

	d.Timeline = make([]ActivityView, 0, len(b.Activities))
	for _, row := range b.Activities {
		message := ""
		if row.Message != nil {
			message = *row.Message
		}
		d.Timeline = append(d.Timeline, ActivityView{
			ID:        row.ID,
			Seq:       row.Seq,
			Type:      row.Type,
			Label:     lifecycle.ActivityLabel(row.Type, message),
			Actor:     row.Actor,
			Timestamp: row.OccurredAt,
			Message:   message,
			Payload:   row.Payload,
		})
	}

	d.AllowedEvents = []string{}
	for _, event := range lifecycle.EventsFrom(state.Status) {
		if lifecycle.Allowed(state.Status, event, actor) {
			d.AllowedEvents = append(d.AllowedEvents, string(event))
		}
	}

	if actor == enums.BookingActorSystem && params != nil {
		d.Actions.CanApprove = params.ShowAdminApproveBookingButton &&
			lifecycle.Allowed(state.Status, enums.ActivityBookingApproved, actor)
		d.Actions.CanAssignSettler = params.ShowAssignSettlerButton &&
			!assignment.Assigned() &&
			len(b.Acceptors.Val) > 0 &&
			lifecycle.Allowed(state.Status, enums.ActivitySettlerSelected, actor)
	}
	return d
}
