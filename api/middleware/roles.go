package middleware

import (
	"net/http"
	"slices"

	"github.com/DevStdio379/settisfy-web/api/responses"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

// RequireRole admits callers whose token role is one of allowed. It runs
// after Auth, so a missing role means an unauthenticated request slipped
// through and is treated the same as a wrong one.
func RequireRole(logg *logger.Logger, allowed ...enums.AccountRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.AccountRole(RoleFromContext(r.Context()))
			if role == "" || !slices.Contains(allowed, role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeForbidden, "role %q may not access this route", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
