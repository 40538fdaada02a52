package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DevStdio379/settisfy-web/api/controllers"
	"github.com/DevStdio379/settisfy-web/api/routes"
	"github.com/DevStdio379/settisfy-web/internal/accounts"
	"github.com/DevStdio379/settisfy-web/internal/analytics"
	"github.com/DevStdio379/settisfy-web/internal/auth"
	"github.com/DevStdio379/settisfy-web/internal/bookings"
	"github.com/DevStdio379/settisfy-web/internal/evidence"
	"github.com/DevStdio379/settisfy-web/internal/reviews"
	"github.com/DevStdio379/settisfy-web/internal/settlerservices"
	"github.com/DevStdio379/settisfy-web/internal/systemparams"
	"github.com/DevStdio379/settisfy-web/internal/users"
	"github.com/DevStdio379/settisfy-web/pkg/auth/session"
	"github.com/DevStdio379/settisfy-web/pkg/bigquery"
	"github.com/DevStdio379/settisfy-web/pkg/bootstrap"
	"github.com/DevStdio379/settisfy-web/pkg/db"
	"github.com/DevStdio379/settisfy-web/pkg/metrics"
	"github.com/DevStdio379/settisfy-web/pkg/outbox"
	"github.com/DevStdio379/settisfy-web/pkg/redis"
	"github.com/DevStdio379/settisfy-web/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	proc := bootstrap.Start("api")
	defer proc.Close()
	cfg, logg := proc.Config, proc.Logger
	boot := context.Background()

	dbClient := proc.Database(boot)
	redisClient := proc.Redis(boot)

	gcsClient, err := gcs.NewClient(boot, cfg.GCS, cfg.GCP, logg)
	proc.Must("gcs", err)
	proc.OnClose("gcs", gcsClient.Close)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	proc.Must("session manager", err)

	svc := buildServices(proc, dbClient, redisClient, gcsClient, sessionManager)

	pingers := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
		"gcs":   gcsClient,
	}
	svc.Analytics = optionalAnalytics(boot, proc, redisClient, pingers)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           routes.NewRouter(cfg, logg, pingers, redisClient, sessionManager, prometheus.DefaultGatherer, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := proc.SignalContext()
	defer stop()
	ctx = logg.WithField(ctx, "addr", server.Addr)
	logg.Info(ctx, "api.starting")

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			proc.Must("http server", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api.shutdown_failed", err)
		}
		logg.Info(shutdownCtx, "api.stopped")
	}
}

func buildServices(proc *bootstrap.Process, dbClient *db.Client, redisClient *redis.Client, gcsClient *gcs.Client, sessions *session.Manager) routes.Services {
	cfg, logg := proc.Config, proc.Logger
	conn := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:       accounts.NewRepository(conn),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	proc.Must("auth service", err)
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	proc.Must("register service", err)

	platformFee, err := cfg.Lifecycle.PlatformFee()
	proc.Must("platform fee", err)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)
	catalogue := settlerservices.NewRepository(conn)
	params := systemparams.NewRepository(conn)
	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:               bookings.NewRepository(conn),
		Tx:                 dbClient,
		Outbox:             outbox.NewService(outbox.NewRepository(conn), logg),
		Evidence:           evidence.NewCollector(gcsClient, cfg.Evidence, logg, bookingMetrics),
		Users:              users.NewRepository(conn),
		SettlerServices:    catalogue,
		Params:             params,
		Metrics:            bookingMetrics,
		Logger:             logg,
		DefaultPlatformFee: platformFee,
	})
	proc.Must("booking service", err)

	catalogueService, err := settlerservices.NewService(catalogue)
	proc.Must("settler service catalogue", err)
	reviewService, err := reviews.NewService(reviews.NewRepository(conn))
	proc.Must("review service", err)
	paramsService, err := systemparams.NewService(params, logg)
	proc.Must("system parameter service", err)

	return routes.Services{
		Auth:            authService,
		Register:        registerService,
		Bookings:        bookingService,
		SettlerServices: catalogueService,
		Reviews:         reviewService,
		Parameters:      paramsService,
	}
}

// optionalAnalytics returns nil when BigQuery is unreachable; bookings are
// served either way.
func optionalAnalytics(ctx context.Context, proc *bootstrap.Process, cache analytics.ReportCache, pingers map[string]controllers.Pinger) analytics.Service {
	cfg, logg := proc.Config, proc.Logger
	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, cfg.Service.Kind, logg)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "api.analytics_disabled")
		return nil
	}
	proc.OnClose("bigquery", bqClient.Close)

	svc, err := analytics.NewService(bqClient, cache, cfg.BigQuery.ReportCacheTTL, logg)
	proc.Must("analytics service", err)
	pingers["bigquery"] = bqClient
	return svc
}
