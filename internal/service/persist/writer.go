// Package persist writes reviewed cards to the store in the background.
// Writes are at-least-once: each card is retried with exponential backoff
// and the failure is only logged once attempts are exhausted, so a training
// session never waits for the store.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// ErrWriterClosed is reported for cards enqueued after Close.
var ErrWriterClosed = errors.New("persist writer closed")

type cardStore interface {
	Upsert(ctx context.Context, card domain.Card) error
}

// Config controls buffering and the retry policy.
type Config struct {
	BufferSize    int
	MaxAttempts   int
	InitialWait   time.Duration
	MaxWait       time.Duration
	JitterPercent uint64
	WriteTimeout  time.Duration
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:    256,
		MaxAttempts:   5,
		InitialWait:   100 * time.Millisecond,
		MaxWait:       5 * time.Second,
		JitterPercent: 20,
		WriteTimeout:  5 * time.Second,
	}
}

// Stats are cumulative counters of a Writer.
type Stats struct {
	Written  int64
	Failed   int64
	Fallback int64
}

// Writer drains a buffered queue of card updates with a single worker.
// When the buffer is full the update is written by a dedicated goroutine
// instead, so Enqueue never blocks and never drops.
type Writer struct {
	store     cardStore
	log       *slog.Logger
	cfg       Config
	onFailure func(domain.PersistenceError)

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Card

	workerDone chan struct{}
	fallback   sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	written  atomic.Int64
	failed   atomic.Int64
	overflow atomic.Int64
}

// Option configures a Writer.
type Option func(*Writer)

// WithFailureHandler registers a callback invoked once per card whose
// attempts are exhausted.
func WithFailureHandler(fn func(domain.PersistenceError)) Option {
	return func(w *Writer) { w.onFailure = fn }
}

// NewWriter starts the worker goroutine. Call Close to stop it.
func NewWriter(log *slog.Logger, store cardStore, cfg Config, opts ...Option) *Writer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialWait <= 0 {
		cfg.InitialWait = DefaultConfig().InitialWait
	}
	if cfg.MaxWait < cfg.InitialWait {
		cfg.MaxWait = cfg.InitialWait
	}
	if cfg.BufferSize < 0 {
		cfg.BufferSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Writer{
		store:      store,
		log:        log.With("service", "persist"),
		cfg:        cfg,
		queue:      make(chan domain.Card, cfg.BufferSize),
		workerDone: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.run()
	return w
}

// Enqueue schedules card for an idempotent upsert and returns immediately.
func (w *Writer) Enqueue(card domain.Card) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.reportFailure(w.ctx, domain.PersistenceError{CardID: card.ID, Attempts: 0, Err: ErrWriterClosed})
		return
	}

	select {
	case w.queue <- card:
	default:
		w.overflow.Add(1)
		w.fallback.Add(1)
		go func() {
			defer w.fallback.Done()
			w.write(card)
		}()
	}
}

// Close stops accepting cards and waits for pending writes. If ctx expires
// first, in-flight retries are canceled and ctx.Err() is returned.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		<-w.workerDone
		w.fallback.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-drained
		return fmt.Errorf("persist writer close: %w", ctx.Err())
	}
}

// Stats returns a snapshot of the counters.
func (w *Writer) Stats() Stats {
	return Stats{
		Written:  w.written.Load(),
		Failed:   w.failed.Load(),
		Fallback: w.overflow.Load(),
	}
}

func (w *Writer) run() {
	defer close(w.workerDone)
	for card := range w.queue {
		w.write(card)
	}
}

func (w *Writer) write(card domain.Card) {
	attempts := 0

	err := retry.Do(w.ctx, w.backoff(), func(ctx context.Context) error {
		attempts++

		writeCtx := ctx
		if w.cfg.WriteTimeout > 0 {
			var cancel context.CancelFunc
			writeCtx, cancel = context.WithTimeout(ctx, w.cfg.WriteTimeout)
			defer cancel()
		}

		err := w.store.Upsert(writeCtx, card)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		w.log.WarnContext(ctx, "card write failed, retrying",
			slog.String("card_id", card.ID.String()),
			slog.Int("attempt", attempts),
			slog.String("error", err.Error()),
		)
		return retry.RetryableError(err)
	})
	if err == nil {
		w.written.Add(1)
		return
	}

	w.reportFailure(w.ctx, domain.PersistenceError{CardID: card.ID, Attempts: attempts, Err: err})
}

func (w *Writer) backoff() retry.Backoff {
	b := retry.NewExponential(w.cfg.InitialWait)
	b = retry.WithCappedDuration(w.cfg.MaxWait, b)
	if w.cfg.JitterPercent > 0 {
		b = retry.WithJitterPercent(w.cfg.JitterPercent, b)
	}
	return retry.WithMaxRetries(uint64(w.cfg.MaxAttempts-1), b)
}

func (w *Writer) reportFailure(ctx context.Context, perr domain.PersistenceError) {
	w.failed.Add(1)
	w.log.ErrorContext(ctx, "card update not persisted",
		slog.String("card_id", perr.CardID.String()),
		slog.Int("attempts", perr.Attempts),
		slog.String("error", perr.Err.Error()),
	)
	if w.onFailure != nil {
		w.onFailure(perr)
	}
}

// retryable reports whether another attempt could succeed. Invalid cards and
// missing rows are permanent.
func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden):
		return false
	}
	return true
}
