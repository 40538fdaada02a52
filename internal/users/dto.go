package users

import (
	"strings"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/google/uuid"
)

// UserDTO is the transport shape of a marketplace user.
type UserDTO struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	UserName        string    `json:"userName"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	PhoneNumber     string    `json:"phoneNumber,omitempty"`
	AccountType     string    `json:"accountType"`
	IsActive        bool      `json:"isActive"`
	IsVerified      bool      `json:"isVerified"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email       string
	UserName    string
	FirstName   string
	LastName    string
	PhoneNumber string
	AccountType string
	IsActive    *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		UserName:        u.UserName,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PhoneNumber:     u.PhoneNumber,
		AccountType:     u.AccountType,
		IsActive:        u.IsActive,
		IsVerified:      u.IsVerified,
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
	}
}

// ToModel normalises the email and checks the account type.
func (c CreateUserDTO) ToModel() (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	accountType := strings.ToLower(strings.TrimSpace(c.AccountType))
	if accountType != AccountTypeCustomer && accountType != AccountTypeSettler {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account type must be customer or settler")
	}
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	return &models.User{
		ID:          uuid.New(),
		Email:       email,
		UserName:    strings.TrimSpace(c.UserName),
		FirstName:   strings.TrimSpace(c.FirstName),
		LastName:    strings.TrimSpace(c.LastName),
		PhoneNumber: strings.TrimSpace(c.PhoneNumber),
		AccountType: accountType,
		IsActive:    isActive,
	}, nil
}

const (
	AccountTypeCustomer = "customer"
	AccountTypeSettler  = "settler"
)
