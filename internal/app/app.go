package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	cardrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/card"
	sessionrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/session"
	subjectrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/subject"
	"github.com/heartmarshall/memorygym-backend/internal/auth"
	"github.com/heartmarshall/memorygym-backend/internal/config"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/persist"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
	"github.com/heartmarshall/memorygym-backend/internal/transport/middleware"
	"github.com/heartmarshall/memorygym-backend/internal/transport/rest"
)

// Run is the server entry point. It loads configuration, connects to
// PostgreSQL, wires services and serves the REST API until ctx is cancelled.
// On shutdown it stops accepting requests and then drains pending card writes.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log, os.Stderr)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool, postgres.WithSerializationRetries(3, 20*time.Millisecond))
	cards := cardrepo.New(pool)
	subjects := subjectrepo.New(pool)
	sessions := sessionrepo.New(pool)
	feed := cardrepo.NewFeed(logger, pool, cards,
		cardrepo.WithWatchLimits(cfg.Session.MaxStreams, cfg.Session.MaxStreamsPerUser))

	writer := persist.NewWriter(logger, cards, PersistConfig(cfg),
		persist.WithFailureHandler(func(perr domain.PersistenceError) {
			logger.Error("card update lost", slog.String("card_id", perr.CardID.String()), slog.Int("attempts", perr.Attempts))
		}),
	)

	studyCfg, err := StudyConfig(cfg)
	if err != nil {
		return err
	}
	studySvc := study.NewService(logger, cards, subjects, sessions, writer, feed, txm, studyCfg)
	subjectSvc := subject.NewService(logger, subjects, cards, txm)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	var (
		limiter   *middleware.RateLimiter
		rateLimit middleware.Middleware
	)
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit)
		rateLimit = limiter.Limit()
	}

	handler := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, studySvc, writer, BuildVersion()),
		Subjects: rest.NewSubjectHandler(subjectSvc, logger),
		Study:    rest.NewStudyHandler(studySvc, logger),
	}, rest.RouterOptions{
		Logger:    logger,
		Auth:      middleware.Auth(tokens),
		CORS:      middleware.CORS(cfg.CORS),
		RateLimit: rateLimit,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return studySvc.RunJanitor(gctx, cfg.Session.SweepInterval)
	})

	if limiter != nil {
		g.Go(func() error { return limiter.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := writer.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("drain card writer: %w", err))
		}
		st := writer.Stats()
		logger.Info("card writer drained",
			slog.Int64("written", st.Written),
			slog.Int64("failed", st.Failed),
			slog.Int64("fallback", st.Fallback),
		)
		return errors.Join(errs...)
	})

	return g.Wait()
}
