package analytics

import (
	"net/http"
	"time"

	"github.com/DevStdio379/settisfy-web/api/responses"
	"github.com/DevStdio379/settisfy-web/api/validators"
	"github.com/DevStdio379/settisfy-web/internal/analytics"
	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

var clock = time.Now

// BookingAnalytics reports booking volume, releases and disputes for the
// admin dashboard over the window chosen by validators.ParseQueryRange.
func BookingAnalytics(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if service == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "analytics unavailable"))
			return
		}

		start, end, err := validators.ParseQueryRange(r, clock())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Query(ctx, types.BookingQueryRequest{Start: start, End: end})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
