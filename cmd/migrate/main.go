// Command migrate applies the embedded PostgreSQL migrations.
//
// Usage:
//
//	migrate [-dsn DSN] up|down|status|version
//
// The DSN defaults to DATABASE_DSN.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	"github.com/heartmarshall/memorygym-backend/internal/app"
	"github.com/heartmarshall/memorygym-backend/internal/config"
)

// envConfig is the part of the server configuration migrate needs.
type envConfig struct {
	Database config.DatabaseConfig
	Log      config.LogConfig
}

func main() {
	dsnFlag := flag.String("dsn", "", "PostgreSQL DSN (overrides DATABASE_DSN)")
	timeoutFlag := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	command := flag.Arg(0)
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn DSN] up|down|status|version")
		os.Exit(1)
	}

	var cfg envConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("read env: %v", err)
	}
	if *dsnFlag != "" {
		cfg.Database.DSN = *dsnFlag
	}
	if cfg.Database.DSN == "" {
		log.Fatal("database DSN is required (DATABASE_DSN or -dsn)")
	}
	cfg.Database.MinConns = 0

	logger := app.NewLogger(cfg.Log, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	if err := run(ctx, logger, cfg.Database, command); err != nil {
		logger.Error("migrate failed", slog.String("command", command), slog.String("error", err.Error()))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, dbCfg config.DatabaseConfig, command string) error {
	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	provider, db, err := postgres.NewMigrator(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		for _, r := range results {
			logResult(logger, r)
		}
		if err != nil {
			return fmt.Errorf("up: %w", err)
		}
		if len(results) == 0 {
			logger.Info("no pending migrations")
		}

	case "down":
		r, err := provider.Down(ctx)
		if r != nil {
			logResult(logger, r)
		}
		if err != nil {
			return fmt.Errorf("down: %w", err)
		}

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		for _, s := range statuses {
			logger.Info("migration",
				slog.Int64("version", s.Source.Version),
				slog.String("path", s.Source.Path),
				slog.String("state", string(s.State)),
				slog.Time("applied_at", s.AppliedAt),
			)
		}

	case "version":
		v, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		logger.Info("database version", slog.Int64("version", v))

	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func logResult(logger *slog.Logger, r *goose.MigrationResult) {
	attrs := []any{
		slog.Int64("version", r.Source.Version),
		slog.String("direction", r.Direction),
		slog.Duration("duration", r.Duration),
	}
	if r.Error != nil {
		logger.Error("migration failed", append(attrs, slog.String("error", r.Error.Error()))...)
		return
	}
	logger.Info("migration applied", attrs...)
}
