package migrate

import (
	"context"
	"fmt"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/db"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
)

// Models lists every table the sqlite dev mode creates through AutoMigrate.
func Models() []any {
	return []any{
		&models.User{},
		&models.OperatorAccount{},
		&models.SettlerService{},
		&models.Booking{},
		&models.BookingActivity{},
		&models.Review{},
		&models.SystemParameter{},
		&models.OutboxEvent{},
		&models.OutboxDLQ{},
	}
}

// MaybeRunDev brings the schema up to date on dev boots when the
// auto-migrate flag is on. Goose files are Postgres-only, so sqlite
// databases are built from the models instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "sqlite": cfg.FeatureFlags.UseSQLite})

	run := gooseUp
	if cfg.FeatureFlags.UseSQLite {
		run = autoMigrate
	}
	logg.Info(ctx, "migrate.dev_autorun.started")
	if err := run(ctx, client); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.dev_autorun.finished")
	return nil
}

func autoMigrate(ctx context.Context, client *db.Client) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("sqlite auto-migrate: %w", err)
	}
	return nil
}

func gooseUp(ctx context.Context, client *db.Client) error {
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
