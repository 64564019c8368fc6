package study

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// cardRepoMock
// ---------------------------------------------------------------------------

var _ cardRepo = &cardRepoMock{}

type cardRepoMock struct {
	ListBySubjectFunc func(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error)
	CountByBoxFunc    func(ctx context.Context, userID, subjectID uuid.UUID) (domain.BoxCounts, error)

	calls struct {
		ListBySubject []struct {
			UserID    uuid.UUID
			SubjectID uuid.UUID
		}
		CountByBox []struct {
			UserID    uuid.UUID
			SubjectID uuid.UUID
		}
	}
	lockListBySubject sync.RWMutex
	lockCountByBox    sync.RWMutex
}

func (mock *cardRepoMock) ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error) {
	if mock.ListBySubjectFunc == nil {
		panic("cardRepoMock.ListBySubjectFunc: method is nil but cardRepo.ListBySubject was just called")
	}
	mock.lockListBySubject.Lock()
	mock.calls.ListBySubject = append(mock.calls.ListBySubject, struct {
		UserID    uuid.UUID
		SubjectID uuid.UUID
	}{userID, subjectID})
	mock.lockListBySubject.Unlock()
	return mock.ListBySubjectFunc(ctx, userID, subjectID)
}

func (mock *cardRepoMock) ListBySubjectCalls() []struct {
	UserID    uuid.UUID
	SubjectID uuid.UUID
} {
	mock.lockListBySubject.RLock()
	defer mock.lockListBySubject.RUnlock()
	return mock.calls.ListBySubject
}

func (mock *cardRepoMock) CountByBox(ctx context.Context, userID, subjectID uuid.UUID) (domain.BoxCounts, error) {
	if mock.CountByBoxFunc == nil {
		panic("cardRepoMock.CountByBoxFunc: method is nil but cardRepo.CountByBox was just called")
	}
	mock.lockCountByBox.Lock()
	mock.calls.CountByBox = append(mock.calls.CountByBox, struct {
		UserID    uuid.UUID
		SubjectID uuid.UUID
	}{userID, subjectID})
	mock.lockCountByBox.Unlock()
	return mock.CountByBoxFunc(ctx, userID, subjectID)
}

func (mock *cardRepoMock) CountByBoxCalls() []struct {
	UserID    uuid.UUID
	SubjectID uuid.UUID
} {
	mock.lockCountByBox.RLock()
	defer mock.lockCountByBox.RUnlock()
	return mock.calls.CountByBox
}

// ---------------------------------------------------------------------------
// subjectRepoMock
// ---------------------------------------------------------------------------

var _ subjectRepo = &subjectRepoMock{}

type subjectRepoMock struct {
	GetByIDFunc          func(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error)
	TouchLastStudiedFunc func(ctx context.Context, userID, id uuid.UUID, at time.Time) error

	calls struct {
		GetByID []struct {
			UserID uuid.UUID
			ID     uuid.UUID
		}
		TouchLastStudied []struct {
			UserID uuid.UUID
			ID     uuid.UUID
			At     time.Time
		}
	}
	lockGetByID          sync.RWMutex
	lockTouchLastStudied sync.RWMutex
}

func (mock *subjectRepoMock) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error) {
	if mock.GetByIDFunc == nil {
		panic("subjectRepoMock.GetByIDFunc: method is nil but subjectRepo.GetByID was just called")
	}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct {
		UserID uuid.UUID
		ID     uuid.UUID
	}{userID, id})
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, userID, id)
}

func (mock *subjectRepoMock) TouchLastStudied(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	if mock.TouchLastStudiedFunc == nil {
		panic("subjectRepoMock.TouchLastStudiedFunc: method is nil but subjectRepo.TouchLastStudied was just called")
	}
	mock.lockTouchLastStudied.Lock()
	mock.calls.TouchLastStudied = append(mock.calls.TouchLastStudied, struct {
		UserID uuid.UUID
		ID     uuid.UUID
		At     time.Time
	}{userID, id, at})
	mock.lockTouchLastStudied.Unlock()
	return mock.TouchLastStudiedFunc(ctx, userID, id, at)
}

func (mock *subjectRepoMock) TouchLastStudiedCalls() []struct {
	UserID uuid.UUID
	ID     uuid.UUID
	At     time.Time
} {
	mock.lockTouchLastStudied.RLock()
	defer mock.lockTouchLastStudied.RUnlock()
	return mock.calls.TouchLastStudied
}

// ---------------------------------------------------------------------------
// sessionRepoMock
// ---------------------------------------------------------------------------

var _ sessionRepo = &sessionRepoMock{}

type sessionRepoMock struct {
	CreateFunc     func(ctx context.Context, s domain.StudySession) error
	ListRecentFunc func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.StudySession, error)
	TotalsFunc     func(ctx context.Context, userID uuid.UUID) (domain.SessionTotals, error)

	calls struct {
		Create     []domain.StudySession
		ListRecent []struct {
			UserID uuid.UUID
			Limit  int
		}
		Totals []uuid.UUID
	}
	lockCreate     sync.RWMutex
	lockListRecent sync.RWMutex
	lockTotals     sync.RWMutex
}

func (mock *sessionRepoMock) Create(ctx context.Context, s domain.StudySession) error {
	if mock.CreateFunc == nil {
		panic("sessionRepoMock.CreateFunc: method is nil but sessionRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, s)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, s)
}

func (mock *sessionRepoMock) CreateCalls() []domain.StudySession {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

func (mock *sessionRepoMock) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.StudySession, error) {
	if mock.ListRecentFunc == nil {
		panic("sessionRepoMock.ListRecentFunc: method is nil but sessionRepo.ListRecent was just called")
	}
	mock.lockListRecent.Lock()
	mock.calls.ListRecent = append(mock.calls.ListRecent, struct {
		UserID uuid.UUID
		Limit  int
	}{userID, limit})
	mock.lockListRecent.Unlock()
	return mock.ListRecentFunc(ctx, userID, limit)
}

func (mock *sessionRepoMock) ListRecentCalls() []struct {
	UserID uuid.UUID
	Limit  int
} {
	mock.lockListRecent.RLock()
	defer mock.lockListRecent.RUnlock()
	return mock.calls.ListRecent
}

func (mock *sessionRepoMock) Totals(ctx context.Context, userID uuid.UUID) (domain.SessionTotals, error) {
	if mock.TotalsFunc == nil {
		panic("sessionRepoMock.TotalsFunc: method is nil but sessionRepo.Totals was just called")
	}
	mock.lockTotals.Lock()
	mock.calls.Totals = append(mock.calls.Totals, userID)
	mock.lockTotals.Unlock()
	return mock.TotalsFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// cardWriterMock
// ---------------------------------------------------------------------------

var _ cardWriter = &cardWriterMock{}

type cardWriterMock struct {
	calls struct {
		Enqueue []domain.Card
	}
	lockEnqueue sync.RWMutex
}

func (mock *cardWriterMock) Enqueue(card domain.Card) {
	mock.lockEnqueue.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, card)
	mock.lockEnqueue.Unlock()
}

func (mock *cardWriterMock) EnqueueCalls() []domain.Card {
	mock.lockEnqueue.RLock()
	defer mock.lockEnqueue.RUnlock()
	return mock.calls.Enqueue
}

// ---------------------------------------------------------------------------
// cardFeedMock
// ---------------------------------------------------------------------------

var _ cardFeed = &cardFeedMock{}

type cardFeedMock struct {
	WatchFunc func(ctx context.Context, userID, subjectID uuid.UUID) (<-chan []domain.Card, error)
}

func (mock *cardFeedMock) Watch(ctx context.Context, userID, subjectID uuid.UUID) (<-chan []domain.Card, error) {
	if mock.WatchFunc == nil {
		panic("cardFeedMock.WatchFunc: method is nil but cardFeed.Watch was just called")
	}
	return mock.WatchFunc(ctx, userID, subjectID)
}

// ---------------------------------------------------------------------------
// txManagerMock
// ---------------------------------------------------------------------------

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		return fn(ctx)
	}
	return mock.RunInTxFunc(ctx, fn)
}
