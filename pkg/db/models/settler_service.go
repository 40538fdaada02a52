package models

import (
	"time"

	dbtypes "github.com/DevStdio379/settisfy-web/pkg/db/types"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlerService is a catalogue service offered by one settler.
type SettlerService struct {
	ID                     uuid.UUID                     `gorm:"column:id;type:uuid;primaryKey"`
	SettlerID              uuid.UUID                     `gorm:"column:settler_id;type:uuid;not null;index"`
	SettlerFirstName       string                        `gorm:"column:settler_first_name;not null"`
	SettlerLastName        string                        `gorm:"column:settler_last_name;not null"`
	SelectedCatalogue      dbtypes.JSON[types.Catalogue] `gorm:"column:selected_catalogue;type:jsonb;not null"`
	ServiceCardImageURLs   dbtypes.JSON[[]string]        `gorm:"column:service_card_image_urls;type:jsonb"`
	ServiceCardBrief       string                        `gorm:"column:service_card_brief;not null;default:''"`
	IsAvailableImmediately bool                          `gorm:"column:is_available_immediately;not null;default:false"`
	AvailableDays          dbtypes.JSON[[]string]        `gorm:"column:available_days;type:jsonb"`
	ServiceStartTime       string                        `gorm:"column:service_start_time;not null;default:''"`
	ServiceEndTime         string                        `gorm:"column:service_end_time;not null;default:''"`
	ServiceLocation        string                        `gorm:"column:service_location;not null;default:''"`
	Qualifications         dbtypes.JSON[[]string]        `gorm:"column:qualifications;type:jsonb"`
	IsActive               bool                          `gorm:"column:is_active;not null;default:true"`
	JobsCount              int                           `gorm:"column:jobs_count;not null;default:0"`
	AverageRatings         decimal.Decimal               `gorm:"column:average_ratings;type:numeric(3,2);not null;default:0"`
	CreatedAt              time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
