package study

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// ErrFeedUnavailable is returned by WatchTrainingCenters when the service
// runs without a card feed.
var ErrFeedUnavailable = errors.New("card feed unavailable")

// TrainingCenters returns one center per box of a subject.
func (s *Service) TrainingCenters(ctx context.Context, subjectID uuid.UUID) ([]domain.TrainingCenter, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if _, err := s.subjects.GetByID(ctx, userID, subjectID); err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	counts, err := s.cards.CountByBox(ctx, userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}

	return s.centers(counts), nil
}

// WatchTrainingCenters streams training centers of a subject, one slice per
// card snapshot. The channel is closed when ctx is done.
func (s *Service) WatchTrainingCenters(ctx context.Context, subjectID uuid.UUID) (<-chan []domain.TrainingCenter, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if s.feed == nil {
		return nil, ErrFeedUnavailable
	}

	if _, err := s.subjects.GetByID(ctx, userID, subjectID); err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	snapshots, err := s.feed.Watch(ctx, userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("watch cards: %w", err)
	}

	out := make(chan []domain.TrainingCenter)
	go func() {
		defer close(out)
		for cards := range snapshots {
			select {
			case out <- s.centers(domain.CountByBox(cards)):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *Service) centers(counts domain.BoxCounts) []domain.TrainingCenter {
	table := s.scheduler.Table()
	centers := make([]domain.TrainingCenter, 0, domain.MaxBox)
	for box := domain.MinBox; box <= domain.MaxBox; box++ {
		centers = append(centers, domain.TrainingCenter{
			Level:        box,
			IntervalDays: table[box-1],
			CardCount:    counts[box-1],
		})
	}
	return centers
}
