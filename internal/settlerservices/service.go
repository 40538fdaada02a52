package settlerservices

import (
	"context"
	"fmt"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxListIDs bounds a lookup by ids.
const MaxListIDs = 50

// ServiceDTO is the transport shape of a settler service.
type ServiceDTO struct {
	ID                     uuid.UUID       `json:"id"`
	SettlerID              uuid.UUID       `json:"settlerId"`
	SettlerFirstName       string          `json:"settlerFirstName"`
	SettlerLastName        string          `json:"settlerLastName"`
	SelectedCatalogue      types.Catalogue `json:"selectedCatalogue"`
	ServiceCardImageURLs   []string        `json:"serviceCardImageUrls"`
	ServiceCardBrief       string          `json:"serviceCardBrief"`
	IsAvailableImmediately bool            `json:"isAvailableImmediately"`
	AvailableDays          []string        `json:"availableDays"`
	ServiceStartTime       string          `json:"serviceStartTime"`
	ServiceEndTime         string          `json:"serviceEndTime"`
	ServiceLocation        string          `json:"serviceLocation"`
	Qualifications         []string        `json:"qualifications"`
	IsActive               bool            `json:"isActive"`
	JobsCount              int             `json:"jobsCount"`
	AverageRatings         decimal.Decimal `json:"averageRatings"`
	CreatedAt              time.Time       `json:"createdAt"`
}

func FromModel(m *models.SettlerService) ServiceDTO {
	return ServiceDTO{
		ID:                     m.ID,
		SettlerID:              m.SettlerID,
		SettlerFirstName:       m.SettlerFirstName,
		SettlerLastName:        m.SettlerLastName,
		SelectedCatalogue:      m.SelectedCatalogue.Val,
		ServiceCardImageURLs:   m.ServiceCardImageURLs.Val,
		ServiceCardBrief:       m.ServiceCardBrief,
		IsAvailableImmediately: m.IsAvailableImmediately,
		AvailableDays:          m.AvailableDays.Val,
		ServiceStartTime:       m.ServiceStartTime,
		ServiceEndTime:         m.ServiceEndTime,
		ServiceLocation:        m.ServiceLocation,
		Qualifications:         m.Qualifications.Val,
		IsActive:               m.IsActive,
		JobsCount:              m.JobsCount,
		AverageRatings:         m.AverageRatings,
		CreatedAt:              m.CreatedAt,
	}
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SettlerService, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.SettlerService, error)
}

// Service serves settler service lookups to the API.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error)
	List(ctx context.Context, ids []uuid.UUID) ([]ServiceDTO, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settler service repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(m)
	return &dto, nil
}

func (s *service) List(ctx context.Context, ids []uuid.UUID) ([]ServiceDTO, error) {
	if len(ids) > MaxListIDs {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d ids may be requested", MaxListIDs))
	}
	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}
