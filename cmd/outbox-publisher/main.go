package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DevStdio379/settisfy-web/pkg/bootstrap"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/metrics"
	"github.com/DevStdio379/settisfy-web/pkg/outbox"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/registry"
	"github.com/DevStdio379/settisfy-web/pkg/pubsub"
)

func main() {
	replay := flag.String("replay", "", "event id of a dead-lettered outbox row to requeue, then exit")
	listDLQ := flag.Bool("list-dlq", false, "print dead-lettered outbox rows awaiting replay, then exit")
	flag.Parse()

	proc := bootstrap.Start("outbox-publisher")
	defer proc.Close()
	cfg, logg := proc.Config, proc.Logger
	boot := context.Background()

	dbClient := proc.Database(boot)
	dlqRepo := outbox.NewDLQRepository(dbClient.DB())

	if *replay != "" || *listDLQ {
		proc.Must("dlq command", runDLQCommand(boot, os.Stdout, dlqRepo, *replay, *listDLQ))
		return
	}

	pubsubClient, err := pubsub.NewClient(boot, cfg.GCP, cfg.PubSub, pubsub.RolePublisher, logg)
	proc.Must("pubsub", err)
	proc.OnClose("pubsub", pubsubClient.Close)

	events, err := registry.NewEventRegistry(cfg.PubSub)
	proc.Must("event registry", err)

	service, err := NewService(ServiceParams{
		Config:     cfg.Outbox,
		Logger:     logg,
		DB:         dbClient,
		Topics:     gcpTopics{client: pubsubClient},
		Repository: outbox.NewRepository(dbClient.DB()),
		Registry:   events,
		DLQ:        dlqRepo,
		Metrics:    metrics.NewOutboxMetrics(prometheus.DefaultRegisterer),
	})
	proc.Must("outbox publisher", err)

	ctx, stop := proc.SignalContext()
	defer stop()
	ctx = logg.WithField(ctx, "topic", cfg.PubSub.BookingTopic)
	logg.Info(ctx, "outbox.publisher.starting")

	proc.Must("outbox publisher", proc.Run(ctx, prometheus.DefaultGatherer, service.Run))
	logg.Info(ctx, "outbox.publisher.stopped")
}

type dlqStore interface {
	Replay(ctx context.Context, eventID uuid.UUID, at time.Time) error
	ListPending(ctx context.Context, limit int) ([]models.OutboxDLQ, error)
}

// runDLQCommand is the operator entry point for parked events: -replay
// requeues one, -list-dlq prints what is waiting.
func runDLQCommand(ctx context.Context, out io.Writer, repo dlqStore, replay string, list bool) error {
	if replay != "" {
		eventID, err := uuid.Parse(replay)
		if err != nil {
			return fmt.Errorf("parse -replay: %w", err)
		}
		if err := repo.Replay(ctx, eventID, time.Now()); err != nil {
			return fmt.Errorf("replay %s: %w", eventID, err)
		}
		fmt.Fprintf(out, "requeued %s\n", eventID)
	}
	if !list {
		return nil
	}

	rows, err := repo.ListPending(ctx, 0)
	if err != nil {
		return fmt.Errorf("list dlq: %w", err)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tFAILED AT\tREASON\tBOOKING\tATTEMPTS")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			row.EventID, row.FailedAt.Format(time.RFC3339), row.ErrorReason, row.AggregateID, row.AttemptCount)
	}
	return tw.Flush()
}
