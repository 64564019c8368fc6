// Command seeder imports a YAML deck into PostgreSQL for one user. Without
// -deck it imports the built-in starter deck. Importing the same deck twice
// adds its cards again to the existing subject.
//
// Flags:
//
//	-user   id of the owning user (required)
//	-deck   path to a deck file (default: starter deck)
//	-dsn    PostgreSQL DSN (overrides DATABASE_DSN)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	cardrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/card"
	subjectrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/subject"
	"github.com/heartmarshall/memorygym-backend/internal/app"
	"github.com/heartmarshall/memorygym-backend/internal/config"
	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

type envConfig struct {
	Database config.DatabaseConfig
	Log      config.LogConfig
}

func main() {
	userFlag := flag.String("user", "", "id of the owning user")
	deckFlag := flag.String("deck", "", "path to a YAML deck (default: starter deck)")
	dsnFlag := flag.String("dsn", "", "PostgreSQL DSN (overrides DATABASE_DSN)")
	flag.Parse()

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		log.Fatalf("invalid -user %q: %v", *userFlag, err)
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

	deck, err := loadDeck(*deckFlag)
	if err != nil {
		logger.Error("load deck", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := subject.NewService(logger, subjectrepo.New(pool), cardrepo.New(pool), postgres.NewTxManager(pool))

	s, n, err := svc.ImportDeck(ctxutil.WithUserID(ctx, userID), deck)
	if err != nil {
		logger.Error("import deck", slog.String("deck", deck.Subject), slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}

	logger.Info("seed completed",
		slog.String("user_id", userID.String()),
		slog.String("subject_id", s.ID.String()),
		slog.Int("cards", n),
	)
}

func loadDeck(path string) (subject.Deck, error) {
	if path == "" {
		return subject.StarterDeck()
	}
	return subject.LoadDeck(path)
}
