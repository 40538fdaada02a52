// Package bootstrap holds the start-up sequence every binary shares: env
// file, config, logger, the database and cache connections, and an ordered
// shutdown.
package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/db"
	"github.com/DevStdio379/settisfy-web/pkg/instance"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/metrics"
	"github.com/DevStdio379/settisfy-web/pkg/migrate"
	"github.com/DevStdio379/settisfy-web/pkg/redis"
)

type closer struct {
	name string
	fn   func() error
}

// Process is one running binary.
type Process struct {
	Kind   string
	Config *config.Config
	Logger *logger.Logger

	closers []closer
	exit    func(int)
}

// Start loads .env (when present) and config, then builds the leveled logger.
// Config errors are fatal.
func Start(kind string) *Process {
	p := &Process{
		Kind:   kind,
		Logger: logger.New(logger.Options{ServiceName: kind}),
		exit:   os.Exit,
	}
	if err := godotenv.Load(); err != nil {
		p.Logger.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	p.Must("config", err)
	cfg.Service.Kind = kind
	p.Config = cfg
	p.Logger = logger.New(logger.Options{
		ServiceName: kind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	return p
}

// OnClose registers fn to run at Close. Closers run last-in first-out.
func (p *Process) OnClose(name string, fn func() error) {
	p.closers = append(p.closers, closer{name: name, fn: fn})
}

func (p *Process) Close() {
	ctx := context.Background()
	for i := len(p.closers) - 1; i >= 0; i-- {
		c := p.closers[i]
		if err := c.fn(); err != nil {
			p.Logger.Error(p.Logger.WithField(ctx, "resource", c.name), "bootstrap.close_failed", err)
		}
	}
	p.closers = nil
}

// Must stops the process when err is set. Registered closers still run.
func (p *Process) Must(resource string, err error) {
	if err == nil {
		return
	}
	p.Logger.Error(p.Logger.WithField(context.Background(), "resource", resource), "bootstrap.resource_failed", err)
	p.Close()
	p.exit(1)
}

// SignalContext is cancelled on SIGINT or SIGTERM and carries the fields
// every log line of this process should have.
func (p *Process) SignalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	fields := map[string]any{
		"serviceKind": p.Kind,
		"instance":    instance.GetID(),
	}
	if p.Config != nil {
		fields["env"] = p.Config.App.Env
	}
	return p.Logger.WithFields(ctx, fields), stop
}

// Database connects, applies dev migrations and registers the close.
func (p *Process) Database(ctx context.Context) *db.Client {
	client, err := db.New(ctx, p.Config.DB, p.Config.FeatureFlags.UseSQLite, p.Logger)
	p.Must("database", err)
	p.OnClose("database", client.Close)
	p.Must("dev migrations", migrate.MaybeRunDev(ctx, p.Config, p.Logger, client))
	return client
}

func (p *Process) Redis(ctx context.Context) *redis.Client {
	client, err := redis.New(ctx, p.Config.Redis, p.Logger)
	p.Must("redis", err)
	p.OnClose("redis", client.Close)
	return client
}

// Run executes run alongside the worker metrics endpoint. The first to fail
// cancels the other. A signal-driven shutdown returns nil.
func (p *Process) Run(ctx context.Context, gatherer prometheus.Gatherer, run func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return run(gctx) })
	if addr := p.Config.App.MetricsAddr; addr != "" && gatherer != nil {
		g.Go(func() error { return metrics.Serve(gctx, addr, gatherer, p.Logger) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
