package bookings

import (
	"strings"
	"time"

	internalbookings "github.com/DevStdio379/settisfy-web/internal/bookings"
	"github.com/DevStdio379/settisfy-web/internal/evidence"
	"github.com/DevStdio379/settisfy-web/internal/lifecycle"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type uploadRequest struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data" validate:"required"`
}

// imagesRequest carries already stored https URLs and base64 encoded uploads.
// The collector applies the per-action image cap after the request bound.
type imagesRequest struct {
	URLs    []string        `json:"urls" validate:"max=10,dive,required,httpsurl"`
	Uploads []uploadRequest `json:"uploads" validate:"max=10,dive"`
}

func (r imagesRequest) toInput() evidence.Input {
	in := evidence.Input{URLs: r.URLs}
	for _, u := range r.Uploads {
		in.Uploads = append(in.Uploads, evidence.Upload{Filename: strings.TrimSpace(u.Filename), Data: u.Data})
	}
	return in
}

type versionRequest struct {
	Version int64 `json:"version" validate:"required,min=1"`
}

type createRequest struct {
	UserID          *uuid.UUID            `json:"userId"`
	SelectedDate    time.Time             `json:"selectedDate" validate:"required"`
	SelectedAddress types.Address         `json:"selectedAddress"`
	FirstName       string                `json:"firstName" validate:"required,max=100"`
	LastName        string                `json:"lastName" validate:"max=100"`
	Catalogue       types.Catalogue       `json:"catalogueService"`
	Addons          []types.DynamicOption `json:"addons"`
	Total           decimal.Decimal       `json:"total" validate:"gte=0"`
	PaymentMethod   string                `json:"paymentMethod" validate:"required"`
	PaymentIntentID *string               `json:"paymentIntentId"`
	PaymentStatus   *string               `json:"paymentStatus"`
	NotesToSettler  *string               `json:"notesToSettler" validate:"omitempty,max=2000"`
}

func (r createRequest) toInput() internalbookings.CreateInput {
	return internalbookings.CreateInput{
		UserID:          r.UserID,
		SelectedDate:    r.SelectedDate,
		Address:         r.SelectedAddress,
		FirstName:       strings.TrimSpace(r.FirstName),
		LastName:        strings.TrimSpace(r.LastName),
		Catalogue:       r.Catalogue,
		Addons:          r.Addons,
		Total:           r.Total,
		PaymentMethod:   strings.TrimSpace(r.PaymentMethod),
		PaymentIntentID: r.PaymentIntentID,
		PaymentStatus:   r.PaymentStatus,
		NotesToSettler:  r.NotesToSettler,
	}
}

type rejectRequest struct {
	Version int64  `json:"version" validate:"required,min=1"`
	Reason  string `json:"reason" validate:"required,max=2000"`
}

type acceptRequest struct {
	Version          int64     `json:"version" validate:"required,min=1"`
	SettlerServiceID uuid.UUID `json:"settlerServiceId" validate:"required"`
}

type selectAcceptorRequest struct {
	Version          int64     `json:"version" validate:"required,min=1"`
	SettlerID        uuid.UUID `json:"settlerId" validate:"required"`
	SettlerServiceID uuid.UUID `json:"settlerServiceId" validate:"required"`
}

type notesRequest struct {
	Version int64         `json:"version" validate:"required,min=1"`
	Notes   string        `json:"notes" validate:"max=2000"`
	Images  imagesRequest `json:"images"`
}

type startRequest struct {
	Version int64  `json:"version" validate:"required,min=1"`
	Code    string `json:"code" validate:"required,max=32"`
}

type quoteRequest struct {
	Version     int64           `json:"version" validate:"required,min=1"`
	Description string          `json:"description" validate:"required,max=2000"`
	Price       decimal.Decimal `json:"price"`
}

type evidenceRequest struct {
	Version              int64         `json:"version" validate:"required,min=1"`
	Remark               string        `json:"remark" validate:"max=2000"`
	Images               imagesRequest `json:"images"`
	CompletedAddons      []string      `json:"completedAddons"`
	ManualQuoteCompleted bool          `json:"manualQuoteCompleted"`
}

type disputeRequest struct {
	Version int64         `json:"version" validate:"required,min=1"`
	Kind    string        `json:"kind" validate:"required,oneof=incompletion cooldown"`
	Action  string        `json:"action" validate:"required,oneof=report resolve reject reject_resolution confirm"`
	Remark  string        `json:"remark" validate:"max=2000"`
	Images  imagesRequest `json:"images"`
}

func (r disputeRequest) toInput() internalbookings.DisputeInput {
	return internalbookings.DisputeInput{
		Version: r.Version,
		Kind:    lifecycle.DisputeKind(r.Kind),
		Action:  internalbookings.DisputeAction(r.Action),
		Remark:  r.Remark,
		Images:  r.Images.toInput(),
	}
}

type cancelRequest struct {
	Version int64         `json:"version" validate:"required,min=1"`
	Reasons []string      `json:"reasons" validate:"max=10,dive,required"`
	Text    string        `json:"text" validate:"max=2000"`
	Images  imagesRequest `json:"images"`
}

type releaseRequest struct {
	Version   int64           `json:"version" validate:"required,min=1"`
	Recipient string          `json:"recipient" validate:"required,oneof=settler customer"`
	Amount    decimal.Decimal `json:"amount"`
	Images    imagesRequest   `json:"images"`
}
