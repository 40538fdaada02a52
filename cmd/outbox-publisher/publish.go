package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/payloads"
	"github.com/DevStdio379/settisfy-web/pkg/outbox/registry"
	pkgpubsub "github.com/DevStdio379/settisfy-web/pkg/pubsub"
)

// topicPublishers hands out one publisher per topic.
type topicPublishers interface {
	Ping(context.Context) error
	Publisher(topic string) publisher
}

// publisher sends with the booking id as ordering key, so a booking's
// timeline reaches subscribers in sequence order. A failed publish pauses
// the key until Resume.
type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	Resume(orderingKey string)
}

type publishResult interface {
	Get(context.Context) (string, error)
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.topics.Publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %q", topic))
	}

	msg := &gcppubsub.Message{
		Data:        event.Payload,
		OrderingKey: event.OrderingKey(),
		Attributes:  messageAttributes(event, resolved),
	}

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if _, err := pub.Publish(ctx, msg).Get(ctx); err != nil {
		pub.Resume(msg.OrderingKey)
		return err
	}
	return nil
}

// messageAttributes lets subscribers route and filter without decoding the body.
func messageAttributes(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
	}
	if activity, ok := resolved.Payload.(*payloads.BookingActivityRecordedEvent); ok {
		attrs["activity_type"] = string(activity.Type)
		attrs["activity_seq"] = strconv.FormatInt(activity.Seq, 10)
		attrs["to_status"] = activity.ToStatus.String()
	}
	return attrs
}

// gcpTopics adapts the shared Pub/Sub client, which caches one
// ordering-enabled publisher per topic.
type gcpTopics struct {
	client *pkgpubsub.Client
}

func (t gcpTopics) Ping(ctx context.Context) error { return t.client.Ping(ctx) }

func (t gcpTopics) Publisher(topic string) publisher {
	p := t.client.Publisher(topic)
	if p == nil {
		return nil
	}
	return gcpPublisher{p}
}

type gcpPublisher struct {
	p *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.p.Publish(ctx, msg)
}

func (g gcpPublisher) Resume(orderingKey string) { g.p.ResumePublish(orderingKey) }
