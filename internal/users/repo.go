package users

import (
	"context"
	"strings"

	"github.com/DevStdio379/settisfy-web/internal/repo"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes marketplace user persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user, err := dto.ToModel()
	if err != nil {
		return nil, err
	}
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, repo.Translate(err, "user not found", "create user")
	}
	return user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, repo.Translate(err, "user not found", "load user")
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, repo.Translate(err, "user not found", "load user by email")
	}
	return &user, nil
}

// FindByIDs loads the users behind a set of ids, keyed by id. Unknown ids are
// left out of the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	unique := repo.DistinctIDs(ids)
	out := make(map[uuid.UUID]models.User, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	var rows []models.User
	if err := r.DB(ctx).Where("id IN ?", unique).Find(&rows).Error; err != nil {
		return nil, repo.Translate(err, "user not found", "load users")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}
