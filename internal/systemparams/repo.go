package systemparams

import (
	"context"
	"errors"

	"github.com/DevStdio379/settisfy-web/internal/repo"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads and writes the single system parameters row.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Defaults is the row served before an operator has saved one.
func Defaults() models.SystemParameter {
	return models.SystemParameter{
		ID:                            models.SystemParameterID,
		ShowAdminApproveBookingButton: true,
		ShowAssignSettlerButton:       true,
	}
}

// Get returns the stored parameters or Defaults when none exist.
func (r *Repository) Get(ctx context.Context) (*models.SystemParameter, error) {
	var row models.SystemParameter
	err := r.DB(ctx).First(&row, "id = ?", models.SystemParameterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := Defaults()
		return &defaults, nil
	}
	if err != nil {
		return nil, repo.Translate(err, "system parameters not found", "load system parameters")
	}
	return &row, nil
}

// Save writes every column of the parameters row, creating it on first use.
func (r *Repository) Save(ctx context.Context, params *models.SystemParameter) error {
	params.ID = models.SystemParameterID
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SystemParameter{}).Where("id = ?", params.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return tx.Create(params).Error
		}
		return tx.Model(&models.SystemParameter{ID: params.ID}).Select("*").Updates(params).Error
	})
	return repo.Translate(err, "system parameters not found", "save system parameters")
}
