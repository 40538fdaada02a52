package middleware

import (
	"context"

	pkgAuth "github.com/DevStdio379/settisfy-web/pkg/auth"
)

type contextKey string

const (
	ctxAccountID contextKey = "account_id"
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxAccessID  contextKey = "access_id"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func AccountIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxAccountID)
}

// UserIDFromContext returns the marketplace user the caller acts for. Admin
// tokens carry none.
func UserIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

// AccessIDFromContext returns the jti of the presented access token.
func AccessIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxAccessID)
}

// WithClaims seeds the context with the caller identity carried by the token.
func WithClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if claims == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxAccountID, claims.AccountID.String())
	ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
	ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
	if claims.UserID != nil {
		ctx = context.WithValue(ctx, ctxUserID, claims.UserID.String())
	}
	return ctx
}
