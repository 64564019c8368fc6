package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	"github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

const insertSubjectSQL = `INSERT INTO subjects (id, user_id, name, created_at) VALUES ($1, $2, $3, now())`

// subjectExists checks whether a subject row with the given ID exists in the database.
func subjectExists(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM subjects WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("subjectExists query: %v", err)
	}
	return exists
}

// ---------------------------------------------------------------------------
// pgxmock
// ---------------------------------------------------------------------------

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestRunInTx_Mock_Commit(t *testing.T) {
	t.Parallel()
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO subjects`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Mock").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		_, err := postgres.QuerierFromCtx(ctx, mock).Exec(ctx, insertSubjectSQL, uuid.New(), uuid.New(), "Mock")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_Mock_RollbackOnError(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	sentinel := errors.New("business logic error")

	mock.ExpectBegin()
	mock.ExpectRollback()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_Mock_BeginFails(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	tm := postgres.NewTxManager(mock)
	called := false
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected begin error")
	}
	if called {
		t.Error("fn must not run when Begin fails")
	}
}

func TestRunInTx_Mock_NestedJoinsOuter(t *testing.T) {
	t.Parallel()
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return tm.RunInTx(ctx, func(ctx context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("nested call must not begin a second transaction: %v", err)
	}
}

func TestRunInTx_Mock_IsoLevel(t *testing.T) {
	t.Parallel()
	mock := newMock(t)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock, postgres.WithIsoLevel(pgx.Serializable))
	if err := tm.RunInTx(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_Mock_RetriesSerializationFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		expect func(mock pgxmock.PgxPoolIface)
		fail   bool
	}{
		{
			name: "callback",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectRollback()
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fail: true,
		},
		{
			name: "commit",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := newMock(t)
			tt.expect(mock)

			tm := postgres.NewTxManager(mock, postgres.WithSerializationRetries(2, time.Millisecond))
			calls := 0
			err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
				calls++
				if tt.fail && calls == 1 {
					return postgres.MapError(&pgconn.PgError{Code: "40001"}, "study_session", uuid.New())
				}
				return nil
			})
			if err != nil {
				t.Fatalf("RunInTx: %v", err)
			}
			if calls != 2 {
				t.Errorf("callback ran %d times, want 2", calls)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestRunInTx_Mock_NoRetryOnOtherErrors(t *testing.T) {
	t.Parallel()
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tm := postgres.NewTxManager(mock, postgres.WithSerializationRetries(3, time.Millisecond))
	calls := 0
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		calls++
		return postgres.MapError(&pgconn.PgError{Code: "23505"}, "subject", uuid.New())
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_Mock_RetriesExhausted(t *testing.T) {
	t.Parallel()
	mock := newMock(t)

	for range 2 {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	tm := postgres.NewTxManager(mock, postgres.WithSerializationRetries(1, time.Millisecond))
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return &pgconn.PgError{Code: "40P01"}
	})
	if !postgres.IsSerializationFailure(err) {
		t.Fatalf("err = %v, want the last deadlock error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Integration (testcontainers)
// ---------------------------------------------------------------------------

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx, insertSubjectSQL, id, uuid.New(), "commit-"+id.String()[:8])
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !subjectExists(t, pool, id) {
		t.Fatal("expected subject to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if _, err := q.Exec(ctx, insertSubjectSQL, id, uuid.New(), "rollback"); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
	if subjectExists(t, pool, id) {
		t.Fatal("expected subject NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	defer func() {
		r := recover()
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}
		if subjectExists(t, pool, id) {
			t.Fatal("expected subject NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if _, err := q.Exec(ctx, insertSubjectSQL, id, uuid.New(), "panic"); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}
