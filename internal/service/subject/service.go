// Package subject manages subjects and the cards inside them.
package subject

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type subjectRepo interface {
	Create(ctx context.Context, s domain.Subject) (domain.Subject, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Subject, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type cardRepo interface {
	Create(ctx context.Context, card domain.Card) (domain.Card, error)
	CreateBatch(ctx context.Context, cards []domain.Card) error
	ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements subject and card authoring.
type Service struct {
	subjects subjectRepo
	cards    cardRepo
	tx       txManager
	log      *slog.Logger
	clock    func() time.Time
}

// NewService creates a new subject service.
func NewService(log *slog.Logger, subjects subjectRepo, cards cardRepo, tx txManager) *Service {
	return &Service{
		subjects: subjects,
		cards:    cards,
		tx:       tx,
		log:      log.With("service", "subject"),
		clock:    time.Now,
	}
}
