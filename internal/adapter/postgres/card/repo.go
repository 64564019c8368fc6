// Package card implements the Card repository using PostgreSQL.
// Statements are built with squirrel; rows are scanned by hand.
package card

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// Filter narrows ListFiltered. Zero value lists every card of a subject.
type Filter struct {
	Box       *int
	DueBefore *time.Time
}

// Repo provides card persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new card repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var cardColumns = []string{
	"id", "user_id", "subject_id", "front", "back", "box_number",
	"last_reviewed", "next_review", "review_count", "created_at", "updated_at",
}

// upsertSuffix keeps the write idempotent: a replayed or reordered update
// never moves a card back to an older review.
const upsertSuffix = `ON CONFLICT (id) DO UPDATE SET
    box_number    = EXCLUDED.box_number,
    last_reviewed = EXCLUDED.last_reviewed,
    next_review   = EXCLUDED.next_review,
    review_count  = EXCLUDED.review_count,
    updated_at    = EXCLUDED.updated_at
WHERE cards.user_id = EXCLUDED.user_id
  AND cards.review_count <= EXCLUDED.review_count`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a card by primary key filtered by user_id.
func (r *Repo) GetByID(ctx context.Context, userID, cardID uuid.UUID) (domain.Card, error) {
	query, args, err := psql.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"id": cardID, "user_id": userID}).
		ToSql()
	if err != nil {
		return domain.Card{}, fmt.Errorf("build get card: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", cardID)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Card{}, postgres.MapError(err, "card", cardID)
		}
		return domain.Card{}, postgres.MapError(pgx.ErrNoRows, "card", cardID)
	}

	card, err := scanCard(rows)
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", cardID)
	}
	return card, nil
}

// ListBySubject returns every card of a subject in authoring order.
func (r *Repo) ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error) {
	return r.ListFiltered(ctx, userID, subjectID, Filter{})
}

// ListFiltered returns cards of a subject narrowed by f, in authoring order.
func (r *Repo) ListFiltered(ctx context.Context, userID, subjectID uuid.UUID, f Filter) ([]domain.Card, error) {
	b := psql.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"user_id": userID, "subject_id": subjectID}).
		OrderBy("created_at", "id")

	if f.Box != nil {
		b = b.Where(sq.Eq{"box_number": *f.Box})
	}
	if f.DueBefore != nil {
		b = b.Where(sq.Or{sq.Eq{"next_review": nil}, sq.LtOrEq{"next_review": *f.DueBefore}})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cards: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// CountByBox returns the number of cards per box for a subject.
func (r *Repo) CountByBox(ctx context.Context, userID, subjectID uuid.UUID) (domain.BoxCounts, error) {
	query, args, err := psql.Select("box_number", "count(*)").
		From("cards").
		Where(sq.Eq{"user_id": userID, "subject_id": subjectID}).
		GroupBy("box_number").
		ToSql()
	if err != nil {
		return domain.BoxCounts{}, fmt.Errorf("build count by box: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return domain.BoxCounts{}, fmt.Errorf("count cards by box: %w", err)
	}
	defer rows.Close()

	var counts domain.BoxCounts
	for rows.Next() {
		var box, n int
		if err := rows.Scan(&box, &n); err != nil {
			return domain.BoxCounts{}, fmt.Errorf("scan box count: %w", err)
		}
		if domain.ValidBox(box) {
			counts[box-1] = n
		}
	}
	if err := rows.Err(); err != nil {
		return domain.BoxCounts{}, fmt.Errorf("iterate box counts: %w", err)
	}

	return counts, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new card.
func (r *Repo) Create(ctx context.Context, card domain.Card) (domain.Card, error) {
	query, args, err := psql.Insert("cards").
		Columns(cardColumns...).
		Values(cardValues(card)...).
		ToSql()
	if err != nil {
		return domain.Card{}, fmt.Errorf("build create card: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return domain.Card{}, postgres.MapError(err, "card", card.ID)
	}
	return card, nil
}

// CreateBatch inserts cards with a single multi-row statement.
func (r *Repo) CreateBatch(ctx context.Context, cards []domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	b := psql.Insert("cards").Columns(cardColumns...)
	for _, c := range cards {
		b = b.Values(cardValues(c)...)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build create cards: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "card batch", cards[0].SubjectID)
	}
	return nil
}

// Upsert writes the scheduling state of card, inserting it if it is missing.
// Repeating the same upsert is a no-op.
func (r *Repo) Upsert(ctx context.Context, card domain.Card) error {
	if !domain.ValidBox(card.BoxNumber) {
		return fmt.Errorf("card %s: %w", card.ID,
			&domain.OutOfRangeError{Field: "box", Value: card.BoxNumber, Min: domain.MinBox, Max: domain.MaxBox})
	}

	query, args, err := psql.Insert("cards").
		Columns(cardColumns...).
		Values(cardValues(card)...).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert card: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "card", card.ID)
	}
	return nil
}

// Delete removes a card by ID.
// Returns domain.ErrNotFound if the card does not exist or belongs to another user.
func (r *Repo) Delete(ctx context.Context, userID, cardID uuid.UUID) error {
	query, args, err := psql.Delete("cards").
		Where(sq.Eq{"id": cardID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete card: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "card", cardID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func cardValues(c domain.Card) []any {
	return []any{
		c.ID, c.UserID, c.SubjectID, c.Front, c.Back, c.BoxNumber,
		c.LastReviewed, c.NextReview, c.ReviewCount, c.CreatedAt, c.UpdatedAt,
	}
}

// scanCards scans multiple rows into a domain.Card slice.
func scanCards(rows pgx.Rows) ([]domain.Card, error) {
	cards := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// scanCard scans the current row; columns follow cardColumns.
func scanCard(rows pgx.Rows) (domain.Card, error) {
	var c domain.Card
	err := rows.Scan(
		&c.ID, &c.UserID, &c.SubjectID, &c.Front, &c.Back, &c.BoxNumber,
		&c.LastReviewed, &c.NextReview, &c.ReviewCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	if !domain.ValidBox(c.BoxNumber) {
		return domain.Card{}, fmt.Errorf("card %s: %w", c.ID,
			&domain.OutOfRangeError{Field: "box", Value: c.BoxNumber, Min: domain.MinBox, Max: domain.MaxBox})
	}
	return c, nil
}
