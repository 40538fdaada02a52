package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

func newTestProcess(out *bytes.Buffer) (*Process, *int) {
	code := -1
	return &Process{
		Kind:   "test",
		Config: &config.Config{},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: out}),
		exit:   func(c int) { code = c },
	}, &code
}

func TestCloseRunsInReverseOrder(t *testing.T) {
	var out bytes.Buffer
	p, _ := newTestProcess(&out)
	var order []string
	p.OnClose("db", func() error { order = append(order, "db"); return nil })
	p.OnClose("redis", func() error { order = append(order, "redis"); return errors.New("already closed") })

	p.Close()
	assert.Equal(t, []string{"redis", "db"}, order)
	assert.Contains(t, out.String(), "bootstrap.close_failed")
	assert.Contains(t, out.String(), `"resource":"redis"`)

	p.Close()
	assert.Len(t, order, 2)
}

func TestMustExitsAfterClosing(t *testing.T) {
	var out bytes.Buffer
	p, code := newTestProcess(&out)
	closed := false
	p.OnClose("db", func() error { closed = true; return nil })

	p.Must("config", nil)
	assert.Equal(t, -1, *code)

	p.Must("pubsub", errors.New("topic missing"))
	assert.Equal(t, 1, *code)
	assert.True(t, closed)
	assert.Contains(t, out.String(), `"resource":"pubsub"`)
}

func TestRunTreatsCancellationAsCleanStop(t *testing.T) {
	var out bytes.Buffer
	p, _ := newTestProcess(&out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, prometheus.NewRegistry(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)
}

func TestRunReturnsWorkerError(t *testing.T) {
	var out bytes.Buffer
	p, _ := newTestProcess(&out)
	boom := errors.New("subscription deleted")

	err := p.Run(context.Background(), nil, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
