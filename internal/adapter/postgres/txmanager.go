package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
)

// TxManager runs service callbacks inside one Postgres transaction carried
// in the context. Nested RunInTx calls join the outer transaction.
type TxManager struct {
	db      Beginner
	opts    pgx.TxOptions
	retries uint64
	backoff time.Duration
}

// TxOption configures a TxManager.
type TxOption func(*TxManager)

// WithIsoLevel sets the isolation level of new transactions. The default is
// the server's (read committed).
func WithIsoLevel(level pgx.TxIsoLevel) TxOption {
	return func(m *TxManager) { m.opts.IsoLevel = level }
}

// WithSerializationRetries reruns a transaction aborted by a serialization
// failure or deadlock up to n more times, starting at wait between attempts.
func WithSerializationRetries(n uint64, wait time.Duration) TxOption {
	return func(m *TxManager) {
		m.retries = n
		m.backoff = wait
	}
}

func NewTxManager(db Beginner, opts ...TxOption) *TxManager {
	m := &TxManager{db: db, backoff: 10 * time.Millisecond}
	for _, o := range opts {
		o(m)
	}
	return m
}

// RunInTx commits when fn returns nil and rolls back on an error or panic.
// Only the outermost call retries, since fn must be safe to run again.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}
	if m.retries == 0 {
		return m.run(ctx, fn)
	}

	b := retry.WithMaxRetries(m.retries, retry.NewExponential(m.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := m.run(ctx, fn)
		if IsSerializationFailure(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Rollback must reach the server even when ctx was canceled mid-callback.
	rollback := func() error { return tx.Rollback(context.WithoutCancel(ctx)) }

	defer func() {
		if r := recover(); r != nil {
			_ = rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		if rbErr := rollback(); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
