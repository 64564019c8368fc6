package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedSubject creates a subject for a fresh random user.
func SeedSubject(t *testing.T, pool *pgxpool.Pool) domain.Subject {
	t.Helper()
	return SeedSubjectForUser(t, pool, uuid.New())
}

// SeedSubjectForUser creates a subject owned by userID.
func SeedSubjectForUser(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) domain.Subject {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	desc := "seeded subject"
	subject := domain.Subject{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        "Subject " + uniqueSuffix(),
		Description: &desc,
		CreatedAt:   now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO subjects (id, user_id, name, description, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		subject.ID, subject.UserID, subject.Name, subject.Description, subject.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSubject: %v", err)
	}

	return subject
}

// CardOption customizes a seeded card.
type CardOption func(*domain.Card)

// WithBox places the card in box.
func WithBox(box int) CardOption {
	return func(c *domain.Card) { c.BoxNumber = box }
}

// WithNextReview sets the due time; nil means due immediately.
func WithNextReview(next *time.Time) CardOption {
	return func(c *domain.Card) { c.NextReview = next }
}

// WithCreatedAt overrides the creation time, which drives list order.
func WithCreatedAt(at time.Time) CardOption {
	return func(c *domain.Card) { c.CreatedAt = at; c.UpdatedAt = at }
}

// SeedCard creates a card in subject. Defaults match a freshly authored card.
func SeedCard(t *testing.T, pool *pgxpool.Pool, subject domain.Subject, front, back string, opts ...CardOption) domain.Card {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	card := domain.NewCard(subject.UserID, subject.ID, front, back, now)
	for _, opt := range opts {
		opt(&card)
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO cards (id, user_id, subject_id, front, back, box_number,
		                    last_reviewed, next_review, review_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		card.ID, card.UserID, card.SubjectID, card.Front, card.Back, card.BoxNumber,
		card.LastReviewed, card.NextReview, card.ReviewCount, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCard: %v", err)
	}

	return card
}
