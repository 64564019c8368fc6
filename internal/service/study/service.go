// Package study runs Leitner training sessions for authenticated users.
// Live sessions are kept in memory; reviewed cards are persisted through an
// asynchronous writer and completed sessions are recorded once.
package study

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study/leitner"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type cardRepo interface {
	ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error)
	CountByBox(ctx context.Context, userID, subjectID uuid.UUID) (domain.BoxCounts, error)
}

type subjectRepo interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error)
	TouchLastStudied(ctx context.Context, userID, id uuid.UUID, at time.Time) error
}

type sessionRepo interface {
	Create(ctx context.Context, s domain.StudySession) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.StudySession, error)
	Totals(ctx context.Context, userID uuid.UUID) (domain.SessionTotals, error)
}

type cardWriter interface {
	Enqueue(card domain.Card)
}

type cardFeed interface {
	Watch(ctx context.Context, userID, subjectID uuid.UUID) (<-chan []domain.Card, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds the scheduling and registry settings of the service.
type Config struct {
	Intervals        leitner.IntervalTable
	StudyOrder       domain.OrderPolicy
	TrainingOrder    domain.OrderPolicy
	IdleTTL          time.Duration
	MaxActivePerUser int
	RecentLimit      int
}

// DefaultConfig returns the standard Leitner setup.
func DefaultConfig() Config {
	return Config{
		Intervals:        leitner.DefaultIntervals,
		StudyOrder:       domain.OrderInsertion,
		TrainingOrder:    domain.OrderInsertion,
		IdleTTL:          30 * time.Minute,
		MaxActivePerUser: 5,
		RecentLimit:      10,
	}
}

// Service implements the study business logic.
type Service struct {
	cards     cardRepo
	subjects  subjectRepo
	sessions  sessionRepo
	writer    cardWriter
	feed      cardFeed
	tx        txManager
	log       *slog.Logger
	cfg       Config
	scheduler *leitner.Scheduler
	registry  *registry

	clock   func() time.Time
	newRand func() *rand.Rand
}

// NewService creates a new study service. feed may be nil when live
// training-center updates are not available.
func NewService(
	log *slog.Logger,
	cards cardRepo,
	subjects subjectRepo,
	sessions sessionRepo,
	writer cardWriter,
	feed cardFeed,
	tx txManager,
	cfg Config,
) *Service {
	if cfg.Intervals == (leitner.IntervalTable{}) {
		cfg.Intervals = leitner.DefaultIntervals
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 10
	}
	return &Service{
		cards:     cards,
		subjects:  subjects,
		sessions:  sessions,
		writer:    writer,
		feed:      feed,
		tx:        tx,
		log:       log.With("service", "study"),
		cfg:       cfg,
		scheduler: leitner.NewScheduler(cfg.Intervals),
		registry:  newRegistry(cfg.MaxActivePerUser),
		clock:     time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) error {
	if s.cfg.IdleTTL <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.registry.sweep(s.clock().Add(-s.cfg.IdleTTL)); n > 0 {
				s.log.InfoContext(ctx, "idle sessions evicted", slog.Int("count", n))
			}
		}
	}
}

// ActiveSessions returns the number of live sessions.
func (s *Service) ActiveSessions() int {
	return s.registry.len()
}

func (s *Service) selector(mode domain.SelectionMode, shuffle *bool) leitner.Selector {
	var (
		sel   leitner.Selector
		order domain.OrderPolicy
	)
	switch mode {
	case domain.SelectionModeTraining:
		sel, order = leitner.TrainingSelector(), s.cfg.TrainingOrder
	default:
		sel, order = leitner.StudySelector(), s.cfg.StudyOrder
	}

	if shuffle != nil {
		order = domain.OrderInsertion
		if *shuffle {
			order = domain.OrderShuffle
		}
	}
	if order == domain.OrderShuffle {
		sel = sel.WithShuffle(s.newRand())
	}
	return sel
}
