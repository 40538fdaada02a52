package reviews

import (
	"context"

	"github.com/DevStdio379/settisfy-web/internal/repo"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRow is a review joined with the reviewing customer.
type ReviewRow struct {
	models.Review
	CustomerFirstName       *string `gorm:"column:customer_first_name"`
	CustomerLastName        *string `gorm:"column:customer_last_name"`
	CustomerProfileImageURL *string `gorm:"column:customer_profile_image_url"`
}

// Aggregate summarises the ratings of one settler service.
type Aggregate struct {
	Count   int64   `gorm:"column:review_count"`
	Average float64 `gorm:"column:average_rating"`
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	return repo.Translate(r.DB(ctx).Create(review).Error, "review not found", "create review")
}

// ListBySettlerService returns the newest reviews of one settler service.
func (r *Repository) ListBySettlerService(ctx context.Context, settlerServiceID uuid.UUID, limit int) ([]ReviewRow, error) {
	var rows []ReviewRow
	err := r.DB(ctx).
		Table("reviews").
		Select("reviews.*, users.first_name AS customer_first_name, users.last_name AS customer_last_name, users.profile_image_url AS customer_profile_image_url").
		Joins("LEFT JOIN users ON users.id = reviews.customer_id").
		Where("reviews.settler_service_id = ?", settlerServiceID).
		Order("reviews.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, repo.Translate(err, "review not found", "list reviews")
	}
	return rows, nil
}

// AggregateBySettlerService counts the reviews of a service and averages the rated ones.
func (r *Repository) AggregateBySettlerService(ctx context.Context, settlerServiceID uuid.UUID) (Aggregate, error) {
	var agg Aggregate
	err := r.DB(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS review_count, COALESCE(AVG(customer_overall_rating), 0) AS average_rating").
		Where("settler_service_id = ?", settlerServiceID).
		Scan(&agg).Error
	if err != nil {
		return Aggregate{}, repo.Translate(err, "review not found", "aggregate reviews")
	}
	return agg, nil
}
