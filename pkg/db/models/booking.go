package models

import (
	"time"

	dbtypes "github.com/DevStdio379/settisfy-web/pkg/db/types"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is a customer's request for a catalogue service. Status is a cache
// of the folded timeline and is only written together with a new activity.
type Booking struct {
	ID      uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Version int64               `gorm:"column:version;not null;default:1"`
	UserID  uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status  enums.BookingStatus `gorm:"column:status;type:double precision;not null;index"`

	SelectedDate     time.Time                           `gorm:"column:selected_date;not null"`
	SelectedAddress  dbtypes.JSON[types.Address]         `gorm:"column:selected_address;type:jsonb;not null"`
	FirstName        string                              `gorm:"column:first_name;not null"`
	LastName         string                              `gorm:"column:last_name;not null"`
	CatalogueService dbtypes.JSON[types.Catalogue]       `gorm:"column:catalogue_service;type:jsonb;not null"`
	Total            decimal.Decimal                     `gorm:"column:total;type:numeric(12,2);not null"`
	Addons           dbtypes.JSON[[]types.DynamicOption] `gorm:"column:addons;type:jsonb"`
	PaymentMethod    string                              `gorm:"column:payment_method;not null"`
	PaymentIntentID  *string                             `gorm:"column:payment_intent_id"`
	PaymentStatus    *string                             `gorm:"column:payment_status"`

	NotesToSettler          *string                `gorm:"column:notes_to_settler"`
	NotesToSettlerImageURLs dbtypes.JSON[[]string] `gorm:"column:notes_to_settler_image_urls;type:jsonb"`

	ManualQuoteDescription string          `gorm:"column:manual_quote_description;not null;default:''"`
	ManualQuotePrice       decimal.Decimal `gorm:"column:manual_quote_price;type:numeric(12,2);not null;default:0"`
	IsManualQuoteCompleted bool            `gorm:"column:is_manual_quote_completed;not null;default:false"`

	Acceptors        dbtypes.JSON[[]types.Acceptor] `gorm:"column:acceptors;type:jsonb"`
	SettlerID        *uuid.UUID                     `gorm:"column:settler_id;type:uuid;index"`
	SettlerServiceID *uuid.UUID                     `gorm:"column:settler_service_id;type:uuid"`
	SettlerFirstName *string                        `gorm:"column:settler_first_name"`
	SettlerLastName  *string                        `gorm:"column:settler_last_name"`
	ServiceStartCode *string                        `gorm:"column:service_start_code"`
	ServiceEndCode   *string                        `gorm:"column:service_end_code"`

	SettlerEvidenceImageURLs dbtypes.JSON[[]string] `gorm:"column:settler_evidence_image_urls;type:jsonb"`
	SettlerEvidenceRemark    *string                `gorm:"column:settler_evidence_remark"`

	IncompletionStatus            *enums.DisputeStatus   `gorm:"column:incompletion_status"`
	IncompletionRound             int                    `gorm:"column:incompletion_round;not null;default:0"`
	IncompletionReportImageURLs   dbtypes.JSON[[]string] `gorm:"column:incompletion_report_image_urls;type:jsonb"`
	IncompletionReportRemark      *string                `gorm:"column:incompletion_report_remark"`
	IncompletionResolvedImageURLs dbtypes.JSON[[]string] `gorm:"column:incompletion_resolved_image_urls;type:jsonb"`
	IncompletionResolvedRemark    *string                `gorm:"column:incompletion_resolved_remark"`

	CooldownStatus            *enums.DisputeStatus   `gorm:"column:cooldown_status"`
	CooldownRound             int                    `gorm:"column:cooldown_round;not null;default:0"`
	CooldownReportImageURLs   dbtypes.JSON[[]string] `gorm:"column:cooldown_report_image_urls;type:jsonb"`
	CooldownReportRemark      *string                `gorm:"column:cooldown_report_remark"`
	CooldownResolvedImageURLs dbtypes.JSON[[]string] `gorm:"column:cooldown_resolved_image_urls;type:jsonb"`
	CooldownResolvedRemark    *string                `gorm:"column:cooldown_resolved_remark"`

	CancelReasons         dbtypes.JSON[[]string] `gorm:"column:cancel_reasons;type:jsonb"`
	CancelReasonText      *string                `gorm:"column:cancel_reason_text"`
	CancelReasonImageURLs dbtypes.JSON[[]string] `gorm:"column:cancel_reason_image_urls;type:jsonb"`
	CancelActor           *enums.BookingActor    `gorm:"column:cancel_actor"`

	ReleasedToSettler       decimal.Decimal        `gorm:"column:released_to_settler;type:numeric(12,2);not null;default:0"`
	SettlerPaymentImageURLs dbtypes.JSON[[]string] `gorm:"column:settler_payment_image_urls;type:jsonb"`
	ReleasedToCustomer      decimal.Decimal        `gorm:"column:released_to_customer;type:numeric(12,2);not null;default:0"`
	CustomerRefundImageURLs dbtypes.JSON[[]string] `gorm:"column:customer_refund_image_urls;type:jsonb"`
	WarrantyStartedAt       *time.Time             `gorm:"column:warranty_started_at"`

	Activities []BookingActivity `gorm:"foreignKey:BookingID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AssignedSettler reports whether an acceptor has been selected.
func (b *Booking) AssignedSettler() bool {
	return b.SettlerID != nil && *b.SettlerID != uuid.Nil
}
