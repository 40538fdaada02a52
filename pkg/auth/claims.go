package auth

import (
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	UserID    *uuid.UUID
	Role      enums.AccountRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. UserID is the
// marketplace user a customer or settler account acts for.
type AccessTokenClaims struct {
	AccountID uuid.UUID         `json:"account_id"`
	UserID    *uuid.UUID        `json:"user_id,omitempty"`
	Role      enums.AccountRole `json:"role"`
	jwt.RegisteredClaims
}
