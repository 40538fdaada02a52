package settlerservices

import (
	"context"

	"github.com/DevStdio379/settisfy-web/internal/repo"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads the services settlers offer.
type Repository struct {
	repo.Base
}

// NewRepository constructs a settler services repo bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a settler service, assigning an id when missing.
func (r *Repository) Create(ctx context.Context, svc *models.SettlerService) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	return repo.Translate(r.DB(ctx).Create(svc).Error, "settler service not found", "create settler service")
}

// FindByID loads one settler service.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SettlerService, error) {
	var svc models.SettlerService
	if err := r.DB(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, repo.Translate(err, "settler service not found", "load settler service")
	}
	return &svc, nil
}

// ListByIDs returns the services with the given ids, newest first.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.SettlerService, error) {
	if len(ids) == 0 {
		return []models.SettlerService{}, nil
	}
	var rows []models.SettlerService
	err := r.DB(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, repo.Translate(err, "settler service not found", "list settler services")
	}
	return rows, nil
}

// ListBySettler returns every service one settler offers.
func (r *Repository) ListBySettler(ctx context.Context, settlerID uuid.UUID) ([]models.SettlerService, error) {
	var rows []models.SettlerService
	err := r.DB(ctx).
		Where("settler_id = ?", settlerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, repo.Translate(err, "settler service not found", "list settler services")
	}
	return rows, nil
}
