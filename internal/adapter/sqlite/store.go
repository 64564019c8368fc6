// Package sqlite is the single-user local storage used by the terminal
// client. Statements are built with ent's dialect builders and the schema
// is managed by goose.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store owns the database handle and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open opens (creating if needed) the SQLite database at path,
// applies pragmas and runs pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, drv: entsql.OpenDB(dialect.SQLite, db)}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Cards returns the card repository.
func (s *Store) Cards() *CardRepo { return &CardRepo{store: s} }

// Subjects returns the subject repository.
func (s *Store) Subjects() *SubjectRepo { return &SubjectRepo{store: s} }

// Sessions returns the completed-session repository.
func (s *Store) Sessions() *SessionRepo { return &SessionRepo{store: s} }

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type txCtxKey struct{}

// RunInTx executes fn within a transaction. Nested calls join the outer one.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txCtxKey{}).(dialect.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// conn returns the transaction stored in ctx, or the driver itself.
func (s *Store) conn(ctx context.Context) dialect.ExecQuerier {
	if tx, ok := ctx.Value(txCtxKey{}).(dialect.Tx); ok {
		return tx
	}
	return s.drv
}

func (s *Store) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := s.conn(ctx).Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) query(ctx context.Context, query string, args []any) (*entsql.Rows, error) {
	rows := &entsql.Rows{}
	if err := s.conn(ctx).Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// builder returns a statement builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// ---------------------------------------------------------------------------
// Setup
// ---------------------------------------------------------------------------

// applyPragmas configures SQLite for single-user use.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrations returns the embedded scripts rooted at their directory, where
// goose expects them.
func migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}

func migrate(ctx context.Context, db *sql.DB) error {
	scripts, err := migrations()
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, scripts)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// dsn selects the ISO-like time layout so stored times sort as text.
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_time_format=sqlite"
	}
	return path + "?_time_format=sqlite"
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// ---------------------------------------------------------------------------
// Value helpers
// ---------------------------------------------------------------------------

// Times are stored in UTC so that text comparison matches time order.
func utc(t time.Time) time.Time { return t.UTC() }

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// mapError converts SQLite constraint errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		if target := constraintError(se); target != nil {
			return fmt.Errorf("%s %s: %w", entity, id, target)
		}
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}

func constraintError(se *sqlite.Error) error {
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return domain.ErrAlreadyExists
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return domain.ErrNotFound
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return domain.ErrValidation
	}
	// Without extended result codes only the message tells them apart.
	msg := se.Error()
	switch {
	case strings.Contains(msg, "UNIQUE"):
		return domain.ErrAlreadyExists
	case strings.Contains(msg, "FOREIGN KEY"):
		return domain.ErrNotFound
	case strings.Contains(msg, "CHECK"):
		return domain.ErrValidation
	}
	return nil
}
