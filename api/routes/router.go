package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DevStdio379/settisfy-web/api/controllers"
	analyticscontrollers "github.com/DevStdio379/settisfy-web/api/controllers/analytics"
	authcontrollers "github.com/DevStdio379/settisfy-web/api/controllers/auth"
	bookingcontrollers "github.com/DevStdio379/settisfy-web/api/controllers/bookings"
	"github.com/DevStdio379/settisfy-web/api/middleware"
	"github.com/DevStdio379/settisfy-web/internal/analytics"
	"github.com/DevStdio379/settisfy-web/internal/auth"
	"github.com/DevStdio379/settisfy-web/internal/bookings"
	"github.com/DevStdio379/settisfy-web/internal/reviews"
	"github.com/DevStdio379/settisfy-web/internal/settlerservices"
	"github.com/DevStdio379/settisfy-web/internal/systemparams"
	"github.com/DevStdio379/settisfy-web/pkg/auth/session"
	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/redis"
)

// redisStore is the slice of the Redis client used by the rate limit and
// idempotency middleware.
type redisStore interface {
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services bundles the domain services the router dispatches to.
type Services struct {
	Auth            auth.Service
	Register        auth.RegisterService
	Bookings        bookings.Service
	SettlerServices settlerservices.Service
	Reviews         reviews.Service
	Parameters      systemparams.Service
	Analytics       analytics.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]controllers.Pinger,
	redisClient redisStore,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, pingers, logg))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginThrottle(redisClient, cfg.RateLimit, logg)).Post("/login", authcontrollers.Login(svc.Auth, logg))
		r.Post("/refresh", authcontrollers.Refresh(svc.Auth, logg))
		r.Post("/logout", authcontrollers.Logout(svc.Auth, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, sessions, logg),
			middleware.RateLimit(redisClient, cfg.RateLimit.APIWindow, cfg.RateLimit.APILimit, logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/ping", controllers.PrivatePing())

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", bookingcontrollers.List(svc.Bookings, logg))
				r.Post("/", bookingcontrollers.Create(svc.Bookings, logg))
				r.Route("/{bookingId}", func(r chi.Router) {
					r.Get("/", bookingcontrollers.Detail(svc.Bookings, logg))
					r.Post("/accept", bookingcontrollers.Accept(svc.Bookings, logg))
					r.Post("/select-acceptor", bookingcontrollers.SelectAcceptor(svc.Bookings, logg))
					r.Post("/notes", bookingcontrollers.UpdateNotes(svc.Bookings, logg))
					r.Post("/start", bookingcontrollers.StartService(svc.Bookings, logg))
					r.Post("/quote", bookingcontrollers.CreateQuote(svc.Bookings, logg))
					r.Post("/end", bookingcontrollers.EndService(svc.Bookings, logg))
					r.Post("/evidence", bookingcontrollers.SubmitEvidence(svc.Bookings, logg))
					r.Post("/complete-job", bookingcontrollers.CompleteJob(svc.Bookings, logg))
					r.Post("/disputes", bookingcontrollers.Dispute(svc.Bookings, logg))
					r.Post("/complete", bookingcontrollers.CompleteBooking(svc.Bookings, logg))
					r.Post("/cancel", bookingcontrollers.Cancel(svc.Bookings, logg))
				})
			})

			r.Route("/settler-services", func(r chi.Router) {
				r.Get("/", controllers.SettlerServicesList(svc.SettlerServices, logg))
				r.Get("/{serviceId}", controllers.SettlerServiceDetail(svc.SettlerServices, logg))
				r.Get("/{serviceId}/reviews", controllers.SettlerServiceReviews(svc.Reviews, logg))
			})

			r.Get("/system-parameters", controllers.SystemParametersGet(svc.Parameters, logg))
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.AccountRoleAdmin))
			r.Get("/ping", controllers.AdminPing())
			r.Post("/accounts", authcontrollers.AdminRegister(svc.Register, logg))
			r.Put("/system-parameters", controllers.SystemParametersUpdate(svc.Parameters, logg))
			r.Route("/bookings/{bookingId}", func(r chi.Router) {
				r.Post("/approve", bookingcontrollers.Approve(svc.Bookings, logg))
				r.Post("/reject", bookingcontrollers.Reject(svc.Bookings, logg))
				r.Post("/release-payment", bookingcontrollers.ReleasePayment(svc.Bookings, logg))
			})
			if svc.Analytics != nil {
				r.Get("/analytics/bookings", analyticscontrollers.BookingAnalytics(svc.Analytics, logg))
			}
		})
	})

	return r
}
