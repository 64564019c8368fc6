// Package subject implements the Subject repository using PostgreSQL.
package subject

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// Repo provides subject persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new subject repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const subjectSelect = `
SELECT s.id, s.user_id, s.name, s.description, s.last_studied, s.created_at,
       (SELECT count(*) FROM cards c WHERE c.subject_id = s.id) AS card_count
FROM subjects s`

const createSQL = `
INSERT INTO subjects (id, user_id, name, description, created_at)
VALUES ($1, $2, $3, $4, $5)`

const getByIDSQL = subjectSelect + `
WHERE s.id = $1 AND s.user_id = $2`

const listSQL = subjectSelect + `
WHERE s.user_id = $1
ORDER BY s.name, s.id`

const deleteSQL = `
DELETE FROM subjects WHERE id = $1 AND user_id = $2`

const touchSQL = `
UPDATE subjects
SET last_studied = GREATEST(COALESCE(last_studied, $3), $3)
WHERE id = $1 AND user_id = $2`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Create inserts a subject. A duplicate name for the same user results in
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, s domain.Subject) (domain.Subject, error) {
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, createSQL,
		s.ID, s.UserID, s.Name, s.Description, s.CreatedAt)
	if err != nil {
		return domain.Subject{}, postgres.MapError(err, "subject", s.ID)
	}
	return s, nil
}

// GetByID returns a subject with its card count.
// Returns domain.ErrNotFound if it does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error) {
	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, getByIDSQL, id, userID)
	s, err := scanSubject(row)
	if err != nil {
		return domain.Subject{}, postgres.MapError(err, "subject", id)
	}
	return s, nil
}

// List returns every subject of a user ordered by name.
func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]domain.Subject, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, listSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := []domain.Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return subjects, nil
}

// Delete removes a subject together with its cards and recorded sessions.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, deleteSQL, id, userID)
	if err != nil {
		return postgres.MapError(err, "subject", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// TouchLastStudied moves last_studied forward to at; it never moves back.
func (r *Repo) TouchLastStudied(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, touchSQL, id, userID, at)
	if err != nil {
		return postgres.MapError(err, "subject", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanSubject(row pgx.Row) (domain.Subject, error) {
	var s domain.Subject
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.LastStudied, &s.CreatedAt, &s.CardCount)
	return s, err
}
