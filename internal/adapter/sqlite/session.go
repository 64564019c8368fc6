package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// SessionRepo stores completed study sessions in SQLite.
type SessionRepo struct {
	store *Store
}

var sessionColumns = []string{
	"id", "user_id", "subject_id", "mode", "level", "total_cards",
	"correct_count", "incorrect_count", "started_at", "completed_at", "created_at",
}

// Create records a completed session. Recording the same id twice is a no-op.
func (r *SessionRepo) Create(ctx context.Context, s domain.StudySession) error {
	query, args := builder().Insert("study_sessions").
		Columns(sessionColumns...).
		Values(s.ID, s.UserID, s.SubjectID, string(s.Mode), s.Level, s.TotalCards,
			s.CorrectCount, s.IncorrectCount, utc(s.StartedAt), utc(s.CompletedAt), utc(s.CreatedAt)).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()

	if _, err := r.store.exec(ctx, query, args); err != nil {
		return mapError(err, "study_session", s.ID)
	}
	return nil
}

// ListRecent returns up to limit sessions of a user, most recent first.
func (r *SessionRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.StudySession, error) {
	b := builder()
	sel := b.Select(sessionColumns...).
		From(b.Table("study_sessions")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("completed_at"), "id")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.store.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.StudySession{}
	for rows.Next() {
		var (
			s     domain.StudySession
			mode  string
			level sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.SubjectID, &mode, &level, &s.TotalCards,
			&s.CorrectCount, &s.IncorrectCount, &s.StartedAt, &s.CompletedAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Mode = domain.SelectionMode(mode)
		if level.Valid {
			l := int(level.Int64)
			s.Level = &l
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Totals sums every recorded session of a user.
func (r *SessionRepo) Totals(ctx context.Context, userID uuid.UUID) (domain.SessionTotals, error) {
	b := builder()
	query, args := b.Select(
		entsql.Count("*"),
		"COALESCE(SUM(total_cards), 0)",
		"COALESCE(SUM(correct_count), 0)",
		"COALESCE(SUM(incorrect_count), 0)",
	).
		From(b.Table("study_sessions")).
		Where(entsql.EQ("user_id", userID)).
		Query()

	rows, err := r.store.query(ctx, query, args)
	if err != nil {
		return domain.SessionTotals{}, fmt.Errorf("session totals: %w", err)
	}
	defer rows.Close()

	var t domain.SessionTotals
	if rows.Next() {
		if err := rows.Scan(&t.Sessions, &t.Cards, &t.Correct, &t.Incorrect); err != nil {
			return domain.SessionTotals{}, fmt.Errorf("scan session totals: %w", err)
		}
	}
	return t, rows.Err()
}
