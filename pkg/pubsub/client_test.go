package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DevStdio379/settisfy-web/pkg/config"
)

func TestResourceNames(t *testing.T) {
	c := &Client{projectID: "settisfy-prod"}

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"short subscription", c.resourceName("subscriptions", "booking-analytics"), "projects/settisfy-prod/subscriptions/booking-analytics"},
		{"full subscription", c.resourceName("subscriptions", "projects/other/subscriptions/x"), "projects/other/subscriptions/x"},
		{"blank subscription", c.resourceName("subscriptions", "  "), ""},
		{"short topic", c.resourceName("topics", "booking-events"), "projects/settisfy-prod/topics/booking-events"},
		{"full topic", c.resourceName("topics", "projects/other/topics/y"), "projects/other/topics/y"},
		{"topic path as subscription", c.resourceName("subscriptions", "projects/other/topics/y"), "projects/settisfy-prod/subscriptions/projects/other/topics/y"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.got, tc.name)
	}
}

func TestRequiredResourceFollowsRole(t *testing.T) {
	cfg := config.PubSubConfig{BookingTopic: "booking-events", AnalyticsSubscription: "booking-analytics"}

	pub := &Client{projectID: "p", cfg: cfg, role: RolePublisher}
	assert.Equal(t, "projects/p/topics/booking-events", pub.requiredResource())

	sub := &Client{projectID: "p", cfg: cfg, role: RoleSubscriber}
	assert.Equal(t, "projects/p/subscriptions/booking-analytics", sub.requiredResource())

	bare := &Client{projectID: "p", role: RoleSubscriber}
	assert.Error(t, bare.verify(context.Background()))
}

func TestNilClientHandles(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("booking-events"))
	assert.Nil(t, c.Subscription("booking-analytics"))
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Ping(context.Background()), errNotInitialized)
}
