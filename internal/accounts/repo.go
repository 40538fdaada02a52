package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/DevStdio379/settisfy-web/internal/repo"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const notFoundMessage = "account not found"

// Repository persists operator accounts, the logins of the dashboard API.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, account *models.OperatorAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return repo.Translate(r.DB(ctx).Create(account).Error, notFoundMessage, "create account")
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OperatorAccount, error) {
	var account models.OperatorAccount
	if err := r.DB(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, repo.Translate(err, notFoundMessage, "load account")
	}
	return &account, nil
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.OperatorAccount, error) {
	var account models.OperatorAccount
	err := r.DB(ctx).First(&account, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, repo.Translate(err, notFoundMessage, "load account")
	}
	return &account, nil
}

// RecordLogin stamps last_login_at and, when rehash is non-empty, replaces
// the stored password hash in the same statement.
func (r *Repository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, rehash string) error {
	updates := map[string]any{"last_login_at": at}
	if rehash != "" {
		updates["password_hash"] = rehash
	}
	res := r.DB(ctx).
		Model(&models.OperatorAccount{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return repo.Translate(res.Error, notFoundMessage, "record login")
	}
	if res.RowsAffected == 0 {
		return repo.Translate(gorm.ErrRecordNotFound, notFoundMessage, "record login")
	}
	return nil
}
