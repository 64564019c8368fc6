package subject

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// CreateCard adds a card to a subject. New cards start in the first box
// and are due immediately.
func (s *Service) CreateCard(ctx context.Context, input CreateCardInput) (domain.Card, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Card{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Card{}, err
	}

	if _, err := s.subjects.GetByID(ctx, userID, input.SubjectID); err != nil {
		return domain.Card{}, fmt.Errorf("get subject: %w", err)
	}

	card, err := s.cards.Create(ctx, domain.NewCard(userID, input.SubjectID, input.Front, input.Back, s.clock()))
	if err != nil {
		return domain.Card{}, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

// ListCards returns every card of a subject in insertion order.
func (s *Service) ListCards(ctx context.Context, subjectID uuid.UUID) ([]domain.Card, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if _, err := s.subjects.GetByID(ctx, userID, subjectID); err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	cards, err := s.cards.ListBySubject(ctx, userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// ImportCards adds a batch of cards to a subject in one transaction.
// Creation times are spaced by one microsecond to keep the import order.
func (s *Service) ImportCards(ctx context.Context, input ImportCardsInput) (int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return 0, err
	}

	now := s.clock()
	cards := make([]domain.Card, 0, len(input.Cards))
	for i, d := range input.Cards {
		cards = append(cards, domain.NewCard(userID, input.SubjectID, d.Front, d.Back, now.Add(time.Duration(i)*time.Microsecond)))
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.subjects.GetByID(ctx, userID, input.SubjectID); err != nil {
			return fmt.Errorf("get subject: %w", err)
		}
		if err := s.cards.CreateBatch(ctx, cards); err != nil {
			return fmt.Errorf("create cards: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "cards imported",
		slog.String("user_id", userID.String()),
		slog.String("subject_id", input.SubjectID.String()),
		slog.Int("count", len(cards)),
	)
	return len(cards), nil
}
