package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DevStdio379/settisfy-web/internal/analytics/router"
	"github.com/DevStdio379/settisfy-web/internal/analytics/worker"
	"github.com/DevStdio379/settisfy-web/internal/analytics/writer"
	"github.com/DevStdio379/settisfy-web/pkg/bigquery"
	"github.com/DevStdio379/settisfy-web/pkg/bootstrap"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/idempotency"
	"github.com/DevStdio379/settisfy-web/pkg/pubsub"
)

func main() {
	proc := bootstrap.Start("analytics-worker")
	defer proc.Close()
	cfg, logg := proc.Config, proc.Logger
	boot := context.Background()

	redisClient := proc.Redis(boot)

	pubsubClient, err := pubsub.NewClient(boot, cfg.GCP, cfg.PubSub, pubsub.RoleSubscriber, logg)
	proc.Must("pubsub", err)
	proc.OnClose("pubsub", pubsubClient.Close)

	bqClient, err := bigquery.NewClient(boot, cfg.GCP, cfg.BigQuery, cfg.Service.Kind, logg)
	proc.Must("bigquery", err)
	proc.OnClose("bigquery", bqClient.Close)

	subscription := pubsubClient.AnalyticsSubscription()
	if subscription == nil {
		proc.Must("analytics subscription", errors.New("subscription not configured"))
	}

	dedup, err := idempotency.NewManager(redisClient, cfg.Eventing.ConsumerIdempotencyTTL)
	proc.Must("idempotency manager", err)

	sink, err := writer.New(bqClient, writer.Config{BookingEventsTable: cfg.BigQuery.BookingEventsTable})
	proc.Must("bigquery writer", err)

	handler, err := router.NewRouter(sink, logg, nil)
	proc.Must("analytics router", err)

	service, err := worker.NewService(subscription, handler, dedup, logg)
	proc.Must("analytics worker", err)

	ctx, stop := proc.SignalContext()
	defer stop()
	ctx = logg.WithField(ctx, "table", cfg.BigQuery.BookingEventsTable)
	logg.Info(ctx, "analytics.worker.starting")

	proc.Must("analytics worker", proc.Run(ctx, prometheus.DefaultGatherer, service.Run))
	logg.Info(ctx, "analytics.worker.stopped")
}
