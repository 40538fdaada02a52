package models

import (
	"time"

	dbtypes "github.com/DevStdio379/settisfy-web/pkg/db/types"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/shopspring/decimal"
)

// SystemParameterID is the key of the single parameters row.
const SystemParameterID = 1

// SystemParameter holds marketplace wide toggles and fees.
type SystemParameter struct {
	ID                            int                                   `gorm:"column:id;primaryKey"`
	PlatformFee                   decimal.Decimal                       `gorm:"column:platform_fee;type:numeric(12,2);not null;default:0"`
	PlatformFeeIsActive           bool                                  `gorm:"column:platform_fee_is_active;not null;default:false"`
	ShowAdminApproveBookingButton bool                                  `gorm:"column:show_admin_approve_booking_button;not null"`
	ShowAssignSettlerButton       bool                                  `gorm:"column:show_assign_settler_button;not null"`
	FAQLink                       string                                `gorm:"column:faq_link;not null;default:''"`
	CustomerSupportLink           string                                `gorm:"column:customer_support_link;not null;default:''"`
	SettlerResources              dbtypes.JSON[[]types.SettlerResource] `gorm:"column:settler_resources;type:jsonb"`
	UpdatedAt                     time.Time                             `gorm:"column:updated_at;autoUpdateTime"`
}
