package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// SubjectRepo stores subjects in SQLite.
type SubjectRepo struct {
	store *Store
}

const subjectSelect = `
SELECT s.id, s.user_id, s.name, s.description, s.last_studied, s.created_at,
       (SELECT count(*) FROM cards c WHERE c.subject_id = s.id) AS card_count
FROM subjects s`

const (
	subjectGetSQL  = subjectSelect + ` WHERE s.id = ? AND s.user_id = ?`
	subjectListSQL = subjectSelect + ` WHERE s.user_id = ? ORDER BY s.name, s.id`

	subjectCreateSQL = `
INSERT INTO subjects (id, user_id, name, description, created_at)
VALUES (?, ?, ?, ?, ?)`

	subjectDeleteSQL = `DELETE FROM subjects WHERE id = ? AND user_id = ?`

	subjectTouchSQL = `
UPDATE subjects
SET last_studied = max(COALESCE(last_studied, ?), ?)
WHERE id = ? AND user_id = ?`
)

// Create inserts a subject. A duplicate name for the same user results in
// domain.ErrAlreadyExists.
func (r *SubjectRepo) Create(ctx context.Context, s domain.Subject) (domain.Subject, error) {
	_, err := r.store.exec(ctx, subjectCreateSQL,
		[]any{s.ID, s.UserID, s.Name, s.Description, utc(s.CreatedAt)})
	if err != nil {
		return domain.Subject{}, mapError(err, "subject", s.ID)
	}
	return s, nil
}

// GetByID returns a subject with its card count.
func (r *SubjectRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error) {
	subjects, err := r.list(ctx, subjectGetSQL, []any{id, userID})
	if err != nil {
		return domain.Subject{}, err
	}
	if len(subjects) == 0 {
		return domain.Subject{}, fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	return subjects[0], nil
}

// List returns every subject of a user ordered by name.
func (r *SubjectRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Subject, error) {
	return r.list(ctx, subjectListSQL, []any{userID})
}

// Delete removes a subject together with its cards and recorded sessions.
func (r *SubjectRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.store.exec(ctx, subjectDeleteSQL, []any{id, userID})
	if err != nil {
		return mapError(err, "subject", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// TouchLastStudied moves last_studied forward to at; it never moves back.
func (r *SubjectRepo) TouchLastStudied(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	res, err := r.store.exec(ctx, subjectTouchSQL, []any{utc(at), utc(at), id, userID})
	if err != nil {
		return mapError(err, "subject", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *SubjectRepo) list(ctx context.Context, query string, args []any) ([]domain.Subject, error) {
	rows, err := r.store.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	subjects := []domain.Subject{}
	for rows.Next() {
		var (
			s           domain.Subject
			description sql.NullString
			lastStudied sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &description, &lastStudied, &s.CreatedAt, &s.CardCount); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		if description.Valid {
			s.Description = &description.String
		}
		s.LastStudied = timePtr(lastStudied)
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return subjects, nil
}
