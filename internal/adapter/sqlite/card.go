package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// CardRepo stores cards in SQLite.
type CardRepo struct {
	store *Store
}

var cardColumns = []string{
	"id", "user_id", "subject_id", "front", "back", "box_number",
	"last_reviewed", "next_review", "review_count", "created_at", "updated_at",
}

// GetByID returns a card owned by userID.
func (r *CardRepo) GetByID(ctx context.Context, userID, cardID uuid.UUID) (domain.Card, error) {
	b := builder()
	query, args := b.Select(cardColumns...).
		From(b.Table("cards")).
		Where(entsql.And(entsql.EQ("id", cardID), entsql.EQ("user_id", userID))).
		Query()

	cards, err := r.list(ctx, query, args)
	if err != nil {
		return domain.Card{}, err
	}
	if len(cards) == 0 {
		return domain.Card{}, fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}
	return cards[0], nil
}

// ListBySubject returns every card of a subject in insertion order.
func (r *CardRepo) ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error) {
	b := builder()
	query, args := b.Select(cardColumns...).
		From(b.Table("cards")).
		Where(entsql.And(entsql.EQ("subject_id", subjectID), entsql.EQ("user_id", userID))).
		OrderBy("created_at", "id").
		Query()
	return r.list(ctx, query, args)
}

// CountByBox returns the number of cards of a subject per box.
func (r *CardRepo) CountByBox(ctx context.Context, userID, subjectID uuid.UUID) (domain.BoxCounts, error) {
	b := builder()
	query, args := b.Select("box_number", entsql.Count("*")).
		From(b.Table("cards")).
		Where(entsql.And(entsql.EQ("subject_id", subjectID), entsql.EQ("user_id", userID))).
		GroupBy("box_number").
		Query()

	rows, err := r.store.query(ctx, query, args)
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

// Create inserts a new card.
func (r *CardRepo) Create(ctx context.Context, card domain.Card) (domain.Card, error) {
	query, args := builder().Insert("cards").
		Columns(cardColumns...).
		Values(cardValues(card)...).
		Query()

	if _, err := r.store.exec(ctx, query, args); err != nil {
		return domain.Card{}, mapError(err, "card", card.ID)
	}
	return card, nil
}

// CreateBatch inserts cards with a single multi-row statement.
func (r *CardRepo) CreateBatch(ctx context.Context, cards []domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	ins := builder().Insert("cards").Columns(cardColumns...)
	for _, c := range cards {
		ins = ins.Values(cardValues(c)...)
	}
	query, args := ins.Query()

	if _, err := r.store.exec(ctx, query, args); err != nil {
		return mapError(err, "card batch", cards[0].SubjectID)
	}
	return nil
}

// Upsert writes the scheduling state of card, inserting it if it is missing.
// An update carrying an older review count than the stored one is ignored.
func (r *CardRepo) Upsert(ctx context.Context, card domain.Card) error {
	if !domain.ValidBox(card.BoxNumber) {
		return fmt.Errorf("card %s: %w", card.ID,
			&domain.OutOfRangeError{Field: "box", Value: card.BoxNumber, Min: domain.MinBox, Max: domain.MaxBox})
	}

	query, args := builder().Insert("cards").
		Columns(cardColumns...).
		Values(cardValues(card)...).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("box_number")
				u.SetExcluded("last_reviewed")
				u.SetExcluded("next_review")
				u.SetExcluded("review_count")
				u.SetExcluded("updated_at")
			}),
			entsql.UpdateWhere(entsql.ExprP(
				"cards.user_id = excluded.user_id AND cards.review_count <= excluded.review_count")),
		).
		Query()

	if _, err := r.store.exec(ctx, query, args); err != nil {
		return mapError(err, "card", card.ID)
	}
	return nil
}

// Delete removes a card owned by userID.
func (r *CardRepo) Delete(ctx context.Context, userID, cardID uuid.UUID) error {
	query, args := builder().Delete("cards").
		Where(entsql.And(entsql.EQ("id", cardID), entsql.EQ("user_id", userID))).
		Query()

	res, err := r.store.exec(ctx, query, args)
	if err != nil {
		return mapError(err, "card", cardID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}
	return nil
}

func (r *CardRepo) list(ctx context.Context, query string, args []any) ([]domain.Card, error) {
	rows, err := r.store.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		var (
			c                domain.Card
			lastRev, nextRev sql.NullTime
		)
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.SubjectID, &c.Front, &c.Back, &c.BoxNumber,
			&lastRev, &nextRev, &c.ReviewCount, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		if !domain.ValidBox(c.BoxNumber) {
			return nil, fmt.Errorf("card %s: %w", c.ID,
				&domain.OutOfRangeError{Field: "box", Value: c.BoxNumber, Min: domain.MinBox, Max: domain.MaxBox})
		}
		c.LastReviewed = timePtr(lastRev)
		c.NextReview = timePtr(nextRev)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func cardValues(c domain.Card) []any {
	return []any{
		c.ID, c.UserID, c.SubjectID, c.Front, c.Back, c.BoxNumber,
		utcPtr(c.LastReviewed), utcPtr(c.NextReview), c.ReviewCount, utc(c.CreatedAt), utc(c.UpdatedAt),
	}
}
