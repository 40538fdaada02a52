package auth

import (
	"time"

	"github.com/DevStdio379/settisfy-web/internal/users"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/google/uuid"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the (possibly expired) access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccountDTO describes the logged in operator account.
type AccountDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Role        enums.AccountRole `json:"role"`
	UserID      *uuid.UUID        `json:"user_id,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
}

// TokenResponse contains the tokens and account produced by login or refresh.
type TokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	Account      *AccountDTO `json:"account"`
}

// RegisterRequest creates an operator account. Customer and settler accounts
// either point at an existing marketplace user or create one.
type RegisterRequest struct {
	Email       string            `json:"email" validate:"required,email"`
	Password    string            `json:"password" validate:"required,min=8"`
	Role        enums.AccountRole `json:"role" validate:"required,oneof=admin customer settler"`
	UserID      *uuid.UUID        `json:"user_id,omitempty"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	PhoneNumber string            `json:"phone_number"`
}

// RegisterResponse returns the created account and the user it acts for.
type RegisterResponse struct {
	Account *AccountDTO    `json:"account"`
	User    *users.UserDTO `json:"user,omitempty"`
}

func accountFromModel(a *models.OperatorAccount) *AccountDTO {
	return &AccountDTO{
		ID:          a.ID,
		Email:       a.Email,
		Role:        a.Role,
		UserID:      a.UserID,
		LastLoginAt: a.LastLoginAt,
	}
}
