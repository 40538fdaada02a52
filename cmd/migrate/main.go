package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/DevStdio379/settisfy-web/internal/auth"
	"github.com/DevStdio379/settisfy-web/pkg/bootstrap"
	"github.com/DevStdio379/settisfy-web/pkg/db"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/DevStdio379/settisfy-web/pkg/migrate"
)

type options struct {
	dir     string
	name    string
	version string
	email   string
}

type command struct {
	needsDB bool
	run     func(ctx context.Context, env *runEnv) (string, error)
}

type runEnv struct {
	opts  options
	proc  *bootstrap.Process
	db    *db.Client
	sqlDB *sql.DB
}

var commands = map[string]command{
	"up":     {needsDB: true, run: gooseCommand("up")},
	"down":   {needsDB: true, run: gooseCommand("down")},
	"status": {needsDB: true, run: gooseCommand("status")},
	"version": {needsDB: true, run: func(ctx context.Context, env *runEnv) (string, error) {
		if env.opts.version == "" {
			return "", errors.New("missing -version")
		}
		return "migrated to " + env.opts.version, migrate.MigrateToVersion(ctx, env.sqlDB, env.opts.dir, env.opts.version)
	}},
	"seed-admin": {needsDB: true, run: seedAdmin},
	"create": {run: func(_ context.Context, env *runEnv) (string, error) {
		if env.opts.name == "" {
			return "", errors.New("missing -name")
		}
		path, err := migrate.CreateSQLMigration(env.opts.dir, env.opts.name)
		return "created migration: " + path, err
	}},
	"validate": {run: func(_ context.Context, env *runEnv) (string, error) {
		return "migration validation passed", migrate.ValidateDir(env.opts.dir)
	}},
}

func main() {
	var opts options
	cmdName := flag.String("cmd", "up", "migration command: "+commandNames())
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.StringVar(&opts.email, "email", "", "operator email (for seed-admin)")
	flag.Parse()

	cmd, ok := commands[*cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown -cmd %q, want one of %s\n", *cmdName, commandNames())
		os.Exit(2)
	}

	proc := bootstrap.Start("migrate")
	defer proc.Close()
	ctx := proc.Logger.WithFields(context.Background(), map[string]any{
		"env": proc.Config.App.Env,
		"cmd": *cmdName,
		"dir": opts.dir,
	})

	env := &runEnv{opts: opts, proc: proc}
	if cmd.needsDB {
		// No dev auto-migrate here: the command decides what runs.
		client, err := db.New(ctx, proc.Config.DB, proc.Config.FeatureFlags.UseSQLite, proc.Logger)
		proc.Must("database", err)
		proc.OnClose("database", client.Close)
		sqlDB, err := client.DB().DB()
		proc.Must("sql database", err)
		env.db, env.sqlDB = client, sqlDB
	}

	proc.Logger.Info(ctx, "migrate.running")
	msg, err := cmd.run(ctx, env)
	proc.Must(*cmdName, err)
	if msg != "" {
		fmt.Println(msg)
	}
}

func gooseCommand(name string) func(context.Context, *runEnv) (string, error) {
	return func(ctx context.Context, env *runEnv) (string, error) {
		return "", migrate.Run(ctx, env.sqlDB, env.opts.dir, name)
	}
}

// seedAdmin creates the first operator account. The password comes from
// SETTISFY_SEED_ADMIN_PASSWORD so it never lands in shell history.
func seedAdmin(ctx context.Context, env *runEnv) (string, error) {
	if env.opts.email == "" {
		return "", errors.New("missing -email")
	}
	password := os.Getenv("SETTISFY_SEED_ADMIN_PASSWORD")
	if password == "" {
		return "", errors.New("SETTISFY_SEED_ADMIN_PASSWORD is not set")
	}
	register, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             env.db,
		PasswordConfig: env.proc.Config.Password,
	})
	if err != nil {
		return "", err
	}
	if _, err := register.Register(ctx, auth.RegisterRequest{
		Email:    env.opts.email,
		Password: password,
		Role:     enums.AccountRoleAdmin,
	}); err != nil {
		return "", err
	}
	return "admin account created: " + env.opts.email, nil
}

func commandNames() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}
