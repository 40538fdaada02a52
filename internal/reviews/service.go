package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/pagination"
	"github.com/google/uuid"
)

// ReviewDTO is the transport shape of a review.
type ReviewDTO struct {
	ID                 uuid.UUID `json:"id"`
	BookingID          uuid.UUID `json:"bookingId"`
	CustomerID         uuid.UUID `json:"customerId"`
	CustomerName       string    `json:"customerName"`
	CustomerImageURL   *string   `json:"customerImageUrl,omitempty"`
	Rating             *int      `json:"rating,omitempty"`
	Feedback           []string  `json:"feedback"`
	OtherComment       *string   `json:"otherComment,omitempty"`
	ImageURLs          []string  `json:"imageUrls"`
	CatalogueServiceID string    `json:"catalogueServiceId"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ListResult carries the newest reviews of a service and its rating summary.
type ListResult struct {
	Items         []ReviewDTO `json:"items"`
	Count         int64       `json:"count"`
	AverageRating float64     `json:"averageRating"`
}

type repository interface {
	ListBySettlerService(ctx context.Context, settlerServiceID uuid.UUID, limit int) ([]ReviewRow, error)
	AggregateBySettlerService(ctx context.Context, settlerServiceID uuid.UUID) (Aggregate, error)
}

type Service interface {
	ListForSettlerService(ctx context.Context, settlerServiceID uuid.UUID, limit int) (*ListResult, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListForSettlerService(ctx context.Context, settlerServiceID uuid.UUID, limit int) (*ListResult, error) {
	rows, err := s.repo.ListBySettlerService(ctx, settlerServiceID, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	agg, err := s.repo.AggregateBySettlerService(ctx, settlerServiceID)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return &ListResult{Items: items, Count: agg.Count, AverageRating: agg.Average}, nil
}

func toDTO(row ReviewRow) ReviewDTO {
	return ReviewDTO{
		ID:                 row.ID,
		BookingID:          row.BookingID,
		CustomerID:         row.CustomerID,
		CustomerName:       customerName(row),
		CustomerImageURL:   row.CustomerProfileImageURL,
		Rating:             row.CustomerOverallRating,
		Feedback:           nonNil(row.CustomerFeedback.Val),
		OtherComment:       row.CustomerOtherComment,
		ImageURLs:          nonNil(row.CustomerReviewImageURLs.Val),
		CatalogueServiceID: row.CatalogueServiceID,
		CreatedAt:          row.CreatedAt,
	}
}

func customerName(row ReviewRow) string {
	var parts []string
	if row.CustomerFirstName != nil && *row.CustomerFirstName != "" {
		parts = append(parts, *row.CustomerFirstName)
	}
	if row.CustomerLastName != nil && *row.CustomerLastName != "" {
		parts = append(parts, *row.CustomerLastName)
	}
	if len(parts) == 0 {
		return "Anonymous"
	}
	return strings.Join(parts, " ")
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
