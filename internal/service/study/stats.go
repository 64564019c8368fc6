package study

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// Statistics aggregates the recorded sessions of the current user.
func (s *Service) Statistics(ctx context.Context) (domain.StudyStats, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.StudyStats{}, domain.ErrUnauthorized
	}

	var (
		totals domain.SessionTotals
		recent []domain.StudySession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.sessions.Totals(gctx, userID)
		if err != nil {
			return fmt.Errorf("session totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.sessions.ListRecent(gctx, userID, s.cfg.RecentLimit)
		if err != nil {
			return fmt.Errorf("recent sessions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.StudyStats{}, err
	}

	summary := domain.SessionSummary{Total: totals.Cards, Correct: totals.Correct, Incorrect: totals.Incorrect}
	return domain.StudyStats{
		TotalSessions:  totals.Sessions,
		TotalCards:     totals.Cards,
		TotalCorrect:   totals.Correct,
		TotalIncorrect: totals.Incorrect,
		Accuracy:       summary.Accuracy(),
		RecentSessions: recent,
	}, nil
}
