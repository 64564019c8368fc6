// Package session implements the completed-session repository using
// PostgreSQL. Queries are built with squirrel and scanned with scany.
package session

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// Repo provides study session persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new session repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Filter narrows List.
type Filter struct {
	SubjectID *uuid.UUID
	Since     *time.Time
	Limit     uint64
}

type totalsRow struct {
	Sessions  int `db:"sessions"`
	Cards     int `db:"cards"`
	Correct   int `db:"correct"`
	Incorrect int `db:"incorrect"`
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var sessionColumns = []string{
	"id", "user_id", "subject_id", "mode", "level", "total_cards",
	"correct_count", "incorrect_count", "started_at", "completed_at", "created_at",
}

type sessionRow struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	SubjectID      uuid.UUID `db:"subject_id"`
	Mode           string    `db:"mode"`
	Level          *int      `db:"level"`
	TotalCards     int       `db:"total_cards"`
	CorrectCount   int       `db:"correct_count"`
	IncorrectCount int       `db:"incorrect_count"`
	StartedAt      time.Time `db:"started_at"`
	CompletedAt    time.Time `db:"completed_at"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r sessionRow) toDomain() domain.StudySession {
	return domain.StudySession{
		ID:             r.ID,
		UserID:         r.UserID,
		SubjectID:      r.SubjectID,
		Mode:           domain.SelectionMode(r.Mode),
		Level:          r.Level,
		TotalCards:     r.TotalCards,
		CorrectCount:   r.CorrectCount,
		IncorrectCount: r.IncorrectCount,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// Create records a completed session. Recording the same session id twice
// is a no-op.
func (r *Repo) Create(ctx context.Context, s domain.StudySession) error {
	query, args, err := psql.Insert("study_sessions").
		Columns(sessionColumns...).
		Values(s.ID, s.UserID, s.SubjectID, string(s.Mode), s.Level, s.TotalCards,
			s.CorrectCount, s.IncorrectCount, s.StartedAt, s.CompletedAt, s.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create session: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "study_session", s.ID)
	}
	return nil
}

// List returns sessions of a user, most recently completed first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, f Filter) ([]domain.StudySession, error) {
	b := psql.Select(sessionColumns...).
		From("study_sessions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("completed_at DESC", "id")

	if f.SubjectID != nil {
		b = b.Where(sq.Eq{"subject_id": *f.SubjectID})
	}
	if f.Since != nil {
		b = b.Where(sq.GtOrEq{"completed_at": *f.Since})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions: %w", err)
	}

	var rows []sessionRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]domain.StudySession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, nil
}

// ListRecent returns up to limit sessions of a user, most recent first.
func (r *Repo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.StudySession, error) {
	if limit < 0 {
		limit = 0
	}
	return r.List(ctx, userID, Filter{Limit: uint64(limit)})
}

// Totals sums every recorded session of a user.
func (r *Repo) Totals(ctx context.Context, userID uuid.UUID) (domain.SessionTotals, error) {
	query, args, err := psql.Select(
		"count(*) AS sessions",
		"COALESCE(sum(total_cards), 0) AS cards",
		"COALESCE(sum(correct_count), 0) AS correct",
		"COALESCE(sum(incorrect_count), 0) AS incorrect",
	).
		From("study_sessions").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return domain.SessionTotals{}, fmt.Errorf("build session totals: %w", err)
	}

	var t totalsRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &t, query, args...); err != nil {
		return domain.SessionTotals{}, fmt.Errorf("session totals: %w", err)
	}
	return domain.SessionTotals(t), nil
}
