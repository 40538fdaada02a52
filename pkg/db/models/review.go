package models

import (
	"time"

	dbtypes "github.com/DevStdio379/settisfy-web/pkg/db/types"
	"github.com/google/uuid"
)

// Review is a customer's rating of a completed booking.
type Review struct {
	ID                      uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	BookingID               uuid.UUID              `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	CustomerID              uuid.UUID              `gorm:"column:customer_id;type:uuid;not null"`
	SettlerID               uuid.UUID              `gorm:"column:settler_id;type:uuid;not null"`
	CatalogueServiceID      string                 `gorm:"column:catalogue_service_id;not null;default:''"`
	SettlerServiceID        uuid.UUID              `gorm:"column:settler_service_id;type:uuid;not null;index"`
	CustomerOverallRating   *int                   `gorm:"column:customer_overall_rating"`
	CustomerFeedback        dbtypes.JSON[[]string] `gorm:"column:customer_feedback;type:jsonb"`
	CustomerOtherComment    *string                `gorm:"column:customer_other_comment"`
	CustomerReviewImageURLs dbtypes.JSON[[]string] `gorm:"column:customer_review_image_urls;type:jsonb"`
	CreatedAt               time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
