package main

import (
	"context"
	"flag"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DevStdio379/settisfy-web/internal/bookings"
	"github.com/DevStdio379/settisfy-web/internal/cron"
	"github.com/DevStdio379/settisfy-web/internal/settlerservices"
	"github.com/DevStdio379/settisfy-web/internal/systemparams"
	"github.com/DevStdio379/settisfy-web/internal/users"
	"github.com/DevStdio379/settisfy-web/pkg/bootstrap"
	"github.com/DevStdio379/settisfy-web/pkg/instance"
	"github.com/DevStdio379/settisfy-web/pkg/metrics"
	"github.com/DevStdio379/settisfy-web/pkg/outbox"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	proc := bootstrap.Start("cron-worker")
	defer proc.Close()
	cfg, logg := proc.Config, proc.Logger
	boot := context.Background()

	dbClient := proc.Database(boot)
	redisClient := proc.Redis(boot)
	conn := dbClient.DB()

	platformFee, err := cfg.Lifecycle.PlatformFee()
	proc.Must("platform fee", err)

	bookingRepo := bookings.NewRepository(conn)
	outboxRepo := outbox.NewRepository(conn)
	// Warranty expiry moves bookings to COMPLETED without evidence, so the
	// worker runs the booking service without a GCS collector.
	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:               bookingRepo,
		Tx:                 dbClient,
		Outbox:             outbox.NewService(outboxRepo, logg),
		Users:              users.NewRepository(conn),
		SettlerServices:    settlerservices.NewRepository(conn),
		Params:             systemparams.NewRepository(conn),
		Metrics:            metrics.NewBookingMetrics(prometheus.DefaultRegisterer),
		Logger:             logg,
		DefaultPlatformFee: platformFee,
	})
	proc.Must("booking service", err)

	warrantyJob, err := cron.NewWarrantyExpiryJob(cron.WarrantyExpiryJobParams{
		Logger:       logg,
		Reader:       bookingRepo,
		Bookings:     bookingService,
		WarrantyDays: cfg.Lifecycle.WarrantyDays,
		BatchSize:    cfg.Cron.WarrantyBatchSize,
	})
	proc.Must("warranty job", err)
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		Events:        outboxRepo,
		DLQ:           outbox.NewDLQRepository(conn),
		RetentionDays: cfg.Cron.OutboxRetentionDays,
	})
	proc.Must("outbox retention job", err)
	jobs, err := cron.NewRegistry(warrantyJob, retentionJob)
	proc.Must("cron registry", err)

	lock, err := cron.NewRedisLock(redisClient, cron.LockKey(cfg.App.Env), instance.GetID(), cfg.Cron.LockTTL)
	proc.Must("cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	proc.Must("cron service", err)

	ctx, stop := proc.SignalContext()
	defer stop()
	ctx = logg.WithField(ctx, "once", *once)
	logg.Info(ctx, "cron.worker.starting")

	if *once {
		proc.Must("cron cycle", service.RunOnce(ctx))
		return
	}
	proc.Must("cron worker", proc.Run(ctx, prometheus.DefaultGatherer, service.Run))
	logg.Info(ctx, "cron.worker.stopped")
}
