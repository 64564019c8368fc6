package subject

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

var _ subjectRepo = &subjectRepoMock{}

type subjectRepoMock struct {
	CreateFunc  func(ctx context.Context, s domain.Subject) (domain.Subject, error)
	GetByIDFunc func(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error)
	ListFunc    func(ctx context.Context, userID uuid.UUID) ([]domain.Subject, error)
	DeleteFunc  func(ctx context.Context, userID, id uuid.UUID) error

	calls struct {
		Create []domain.Subject
		Delete []struct {
			UserID uuid.UUID
			ID     uuid.UUID
		}
	}
	lockCreate sync.RWMutex
	lockDelete sync.RWMutex
}

func (mock *subjectRepoMock) Create(ctx context.Context, s domain.Subject) (domain.Subject, error) {
	if mock.CreateFunc == nil {
		panic("subjectRepoMock.CreateFunc: method is nil but subjectRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, s)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, s)
}

func (mock *subjectRepoMock) CreateCalls() []domain.Subject {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

func (mock *subjectRepoMock) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Subject, error) {
	if mock.GetByIDFunc == nil {
		panic("subjectRepoMock.GetByIDFunc: method is nil but subjectRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, userID, id)
}

func (mock *subjectRepoMock) List(ctx context.Context, userID uuid.UUID) ([]domain.Subject, error) {
	if mock.ListFunc == nil {
		panic("subjectRepoMock.ListFunc: method is nil but subjectRepo.List was just called")
	}
	return mock.ListFunc(ctx, userID)
}

func (mock *subjectRepoMock) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if mock.DeleteFunc == nil {
		panic("subjectRepoMock.DeleteFunc: method is nil but subjectRepo.Delete was just called")
	}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, struct {
		UserID uuid.UUID
		ID     uuid.UUID
	}{userID, id})
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, userID, id)
}

func (mock *subjectRepoMock) DeleteCalls() []struct {
	UserID uuid.UUID
	ID     uuid.UUID
} {
	mock.lockDelete.RLock()
	defer mock.lockDelete.RUnlock()
	return mock.calls.Delete
}

var _ cardRepo = &cardRepoMock{}

type cardRepoMock struct {
	CreateFunc        func(ctx context.Context, card domain.Card) (domain.Card, error)
	CreateBatchFunc   func(ctx context.Context, cards []domain.Card) error
	ListBySubjectFunc func(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error)

	calls struct {
		Create      []domain.Card
		CreateBatch [][]domain.Card
	}
	lockCreate      sync.RWMutex
	lockCreateBatch sync.RWMutex
}

func (mock *cardRepoMock) Create(ctx context.Context, card domain.Card) (domain.Card, error) {
	if mock.CreateFunc == nil {
		panic("cardRepoMock.CreateFunc: method is nil but cardRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, card)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, card)
}

func (mock *cardRepoMock) CreateCalls() []domain.Card {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

func (mock *cardRepoMock) CreateBatch(ctx context.Context, cards []domain.Card) error {
	if mock.CreateBatchFunc == nil {
		panic("cardRepoMock.CreateBatchFunc: method is nil but cardRepo.CreateBatch was just called")
	}
	mock.lockCreateBatch.Lock()
	mock.calls.CreateBatch = append(mock.calls.CreateBatch, cards)
	mock.lockCreateBatch.Unlock()
	return mock.CreateBatchFunc(ctx, cards)
}

func (mock *cardRepoMock) CreateBatchCalls() [][]domain.Card {
	mock.lockCreateBatch.RLock()
	defer mock.lockCreateBatch.RUnlock()
	return mock.calls.CreateBatch
}

func (mock *cardRepoMock) ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]domain.Card, error) {
	if mock.ListBySubjectFunc == nil {
		panic("cardRepoMock.ListBySubjectFunc: method is nil but cardRepo.ListBySubject was just called")
	}
	return mock.ListBySubjectFunc(ctx, userID, subjectID)
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	calls int
	mu    sync.Mutex
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	mock.mu.Lock()
	mock.calls++
	mock.mu.Unlock()
	return fn(ctx)
}
