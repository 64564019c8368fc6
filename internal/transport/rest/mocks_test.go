package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
)

// ---------------------------------------------------------------------------
// subjectServiceMock
// ---------------------------------------------------------------------------

var _ subjectService = &subjectServiceMock{}

type subjectServiceMock struct {
	CreateSubjectFunc func(ctx context.Context, input subject.CreateSubjectInput) (domain.Subject, error)
	ListSubjectsFunc  func(ctx context.Context) ([]domain.Subject, error)
	GetSubjectFunc    func(ctx context.Context, id uuid.UUID) (domain.Subject, error)
	DeleteSubjectFunc func(ctx context.Context, id uuid.UUID) error
	CreateCardFunc    func(ctx context.Context, input subject.CreateCardInput) (domain.Card, error)
	ListCardsFunc     func(ctx context.Context, subjectID uuid.UUID) ([]domain.Card, error)
	ImportCardsFunc   func(ctx context.Context, input subject.ImportCardsInput) (int, error)
}

func (m *subjectServiceMock) CreateSubject(ctx context.Context, input subject.CreateSubjectInput) (domain.Subject, error) {
	if m.CreateSubjectFunc == nil {
		panic("subjectServiceMock.CreateSubjectFunc: method is nil but subjectService.CreateSubject was just called")
	}
	return m.CreateSubjectFunc(ctx, input)
}

func (m *subjectServiceMock) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	if m.ListSubjectsFunc == nil {
		panic("subjectServiceMock.ListSubjectsFunc: method is nil but subjectService.ListSubjects was just called")
	}
	return m.ListSubjectsFunc(ctx)
}

func (m *subjectServiceMock) GetSubject(ctx context.Context, id uuid.UUID) (domain.Subject, error) {
	if m.GetSubjectFunc == nil {
		panic("subjectServiceMock.GetSubjectFunc: method is nil but subjectService.GetSubject was just called")
	}
	return m.GetSubjectFunc(ctx, id)
}

func (m *subjectServiceMock) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	if m.DeleteSubjectFunc == nil {
		panic("subjectServiceMock.DeleteSubjectFunc: method is nil but subjectService.DeleteSubject was just called")
	}
	return m.DeleteSubjectFunc(ctx, id)
}

func (m *subjectServiceMock) CreateCard(ctx context.Context, input subject.CreateCardInput) (domain.Card, error) {
	if m.CreateCardFunc == nil {
		panic("subjectServiceMock.CreateCardFunc: method is nil but subjectService.CreateCard was just called")
	}
	return m.CreateCardFunc(ctx, input)
}

func (m *subjectServiceMock) ListCards(ctx context.Context, subjectID uuid.UUID) ([]domain.Card, error) {
	if m.ListCardsFunc == nil {
		panic("subjectServiceMock.ListCardsFunc: method is nil but subjectService.ListCards was just called")
	}
	return m.ListCardsFunc(ctx, subjectID)
}

func (m *subjectServiceMock) ImportCards(ctx context.Context, input subject.ImportCardsInput) (int, error) {
	if m.ImportCardsFunc == nil {
		panic("subjectServiceMock.ImportCardsFunc: method is nil but subjectService.ImportCards was just called")
	}
	return m.ImportCardsFunc(ctx, input)
}

// ---------------------------------------------------------------------------
// studyServiceMock
// ---------------------------------------------------------------------------

var _ studyService = &studyServiceMock{}

type studyServiceMock struct {
	StartSessionFunc         func(ctx context.Context, input study.StartSessionInput) (study.SessionView, error)
	SubmitAnswerFunc         func(ctx context.Context, input study.SubmitAnswerInput) (study.AnswerResult, study.SessionView, error)
	NextCardFunc             func(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error)
	GetSessionFunc           func(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error)
	AbandonSessionFunc       func(ctx context.Context, sessionID uuid.UUID) error
	TrainingCentersFunc      func(ctx context.Context, subjectID uuid.UUID) ([]domain.TrainingCenter, error)
	WatchTrainingCentersFunc func(ctx context.Context, subjectID uuid.UUID) (<-chan []domain.TrainingCenter, error)
	StatisticsFunc           func(ctx context.Context) (domain.StudyStats, error)
}

func (m *studyServiceMock) StartSession(ctx context.Context, input study.StartSessionInput) (study.SessionView, error) {
	if m.StartSessionFunc == nil {
		panic("studyServiceMock.StartSessionFunc: method is nil but studyService.StartSession was just called")
	}
	return m.StartSessionFunc(ctx, input)
}

func (m *studyServiceMock) SubmitAnswer(ctx context.Context, input study.SubmitAnswerInput) (study.AnswerResult, study.SessionView, error) {
	if m.SubmitAnswerFunc == nil {
		panic("studyServiceMock.SubmitAnswerFunc: method is nil but studyService.SubmitAnswer was just called")
	}
	return m.SubmitAnswerFunc(ctx, input)
}

func (m *studyServiceMock) NextCard(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error) {
	if m.NextCardFunc == nil {
		panic("studyServiceMock.NextCardFunc: method is nil but studyService.NextCard was just called")
	}
	return m.NextCardFunc(ctx, sessionID)
}

func (m *studyServiceMock) GetSession(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error) {
	if m.GetSessionFunc == nil {
		panic("studyServiceMock.GetSessionFunc: method is nil but studyService.GetSession was just called")
	}
	return m.GetSessionFunc(ctx, sessionID)
}

func (m *studyServiceMock) AbandonSession(ctx context.Context, sessionID uuid.UUID) error {
	if m.AbandonSessionFunc == nil {
		panic("studyServiceMock.AbandonSessionFunc: method is nil but studyService.AbandonSession was just called")
	}
	return m.AbandonSessionFunc(ctx, sessionID)
}

func (m *studyServiceMock) TrainingCenters(ctx context.Context, subjectID uuid.UUID) ([]domain.TrainingCenter, error) {
	if m.TrainingCentersFunc == nil {
		panic("studyServiceMock.TrainingCentersFunc: method is nil but studyService.TrainingCenters was just called")
	}
	return m.TrainingCentersFunc(ctx, subjectID)
}

func (m *studyServiceMock) WatchTrainingCenters(ctx context.Context, subjectID uuid.UUID) (<-chan []domain.TrainingCenter, error) {
	if m.WatchTrainingCentersFunc == nil {
		panic("studyServiceMock.WatchTrainingCentersFunc: method is nil but studyService.WatchTrainingCenters was just called")
	}
	return m.WatchTrainingCentersFunc(ctx, subjectID)
}

func (m *studyServiceMock) Statistics(ctx context.Context) (domain.StudyStats, error) {
	if m.StatisticsFunc == nil {
		panic("studyServiceMock.StatisticsFunc: method is nil but studyService.Statistics was just called")
	}
	return m.StatisticsFunc(ctx)
}
