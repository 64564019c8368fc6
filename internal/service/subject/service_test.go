package subject

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(subjects *subjectRepoMock, cards *cardRepoMock, tx *txManagerMock) *Service {
	svc := NewService(slog.Default(), subjects, cards, tx)
	svc.clock = func() time.Time { return testNow }
	return svc
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func TestService_CreateSubject(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)

	subjects := &subjectRepoMock{
		CreateFunc: func(ctx context.Context, s domain.Subject) (domain.Subject, error) { return s, nil },
	}
	svc := newTestService(subjects, &cardRepoMock{}, &txManagerMock{})

	blank := "   "
	got, err := svc.CreateSubject(ctx, CreateSubjectInput{Name: "  English words ", Description: &blank})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "English words" || got.UserID != userID || got.Description != nil {
		t.Errorf("subject = %+v", got)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testNow)
	}
}

func TestService_CreateSubject_Validation(t *testing.T) {
	t.Parallel()
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	subjects := &subjectRepoMock{}
	svc := newTestService(subjects, &cardRepoMock{}, &txManagerMock{})

	tests := []struct {
		name  string
		input CreateSubjectInput
		want  string
	}{
		{"blank name", CreateSubjectInput{Name: "  "}, "name"},
		{"long name", CreateSubjectInput{Name: strings.Repeat("x", 101)}, "name"},
		{"long description", CreateSubjectInput{Name: "ok", Description: ptr(strings.Repeat("d", 501))}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldsOf(t, func() error { _, err := svc.CreateSubject(ctx, tt.input); return err }())
			if len(fields) != 1 || fields[0] != tt.want {
				t.Errorf("fields = %v, want [%s]", fields, tt.want)
			}
		})
	}
	if len(subjects.CreateCalls()) != 0 {
		t.Error("repo must not be called for invalid input")
	}
}

func TestService_Unauthorized(t *testing.T) {
	t.Parallel()
	svc := newTestService(&subjectRepoMock{}, &cardRepoMock{}, &txManagerMock{})
	ctx := context.Background()

	if _, err := svc.ListSubjects(ctx); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("ListSubjects error = %v", err)
	}
	if _, err := svc.CreateCard(ctx, CreateCardInput{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("CreateCard error = %v", err)
	}
	if _, err := svc.ImportCards(ctx, ImportCardsInput{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("ImportCards error = %v", err)
	}
	if err := svc.DeleteSubject(ctx, uuid.New()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("DeleteSubject error = %v", err)
	}
}

func TestService_DeleteSubject_NotFound(t *testing.T) {
	t.Parallel()
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	subjects := &subjectRepoMock{
		DeleteFunc: func(ctx context.Context, userID, id uuid.UUID) error { return domain.ErrNotFound },
	}
	svc := newTestService(subjects, &cardRepoMock{}, &txManagerMock{})

	if err := svc.DeleteSubject(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestService_CreateCard(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	subjectID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)

	subjects := &subjectRepoMock{
		GetByIDFunc: func(ctx context.Context, uid, id uuid.UUID) (domain.Subject, error) {
			if id != subjectID {
				return domain.Subject{}, domain.ErrNotFound
			}
			return domain.Subject{ID: id, UserID: uid}, nil
		},
	}
	cards := &cardRepoMock{
		CreateFunc: func(ctx context.Context, c domain.Card) (domain.Card, error) { return c, nil },
	}
	svc := newTestService(subjects, cards, &txManagerMock{})

	got, err := svc.CreateCard(ctx, CreateCardInput{SubjectID: subjectID, Front: " яблоко ", Back: "apple"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Front != "яблоко" || got.BoxNumber != domain.MinBox || got.ReviewCount != 0 {
		t.Errorf("card = %+v", got)
	}
	if got.NextReview == nil || !got.NextReview.Equal(testNow) {
		t.Errorf("NextReview = %v, want %v", got.NextReview, testNow)
	}

	if _, err := svc.CreateCard(ctx, CreateCardInput{SubjectID: uuid.New(), Front: "a", Back: "b"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign subject error = %v, want ErrNotFound", err)
	}

	fields := fieldsOf(t, func() error {
		_, err := svc.CreateCard(ctx, CreateCardInput{Front: "", Back: " "})
		return err
	}())
	if strings.Join(fields, ",") != "subject_id,front,back" {
		t.Errorf("fields = %v", fields)
	}
}

func TestService_ImportCards(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	subjectID := uuid.New()
	ctx := ctxutil.WithUserID(context.Background(), userID)

	subjects := &subjectRepoMock{
		GetByIDFunc: func(ctx context.Context, uid, id uuid.UUID) (domain.Subject, error) {
			return domain.Subject{ID: id, UserID: uid}, nil
		},
	}
	cards := &cardRepoMock{
		CreateBatchFunc: func(ctx context.Context, cs []domain.Card) error { return nil },
	}
	tx := &txManagerMock{}
	svc := newTestService(subjects, cards, tx)

	n, err := svc.ImportCards(ctx, ImportCardsInput{
		SubjectID: subjectID,
		Cards: []CardDraft{
			{Front: "яблоко", Back: "apple"},
			{Front: "книга", Back: "book"},
			{Front: "дом", Back: "house"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("imported = %d, want 3", n)
	}
	if tx.calls != 1 {
		t.Errorf("transactions = %d, want 1", tx.calls)
	}

	batches := cards.CreateBatchCalls()
	if len(batches) != 1 || len(batches[0]) != 3 {
		t.Fatalf("CreateBatch calls = %v", batches)
	}
	batch := batches[0]
	if !batch[0].CreatedAt.Before(batch[1].CreatedAt) || !batch[1].CreatedAt.Before(batch[2].CreatedAt) {
		t.Error("creation times must follow import order")
	}
	for _, c := range batch {
		if c.UserID != userID || c.SubjectID != subjectID || c.BoxNumber != 1 {
			t.Errorf("card = %+v", c)
		}
	}
}

func TestService_ImportCards_Validation(t *testing.T) {
	t.Parallel()
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	svc := newTestService(&subjectRepoMock{}, &cardRepoMock{}, &txManagerMock{})

	tests := []struct {
		name  string
		input ImportCardsInput
		want  []string
	}{
		{"no cards", ImportCardsInput{SubjectID: uuid.New()}, []string{"cards"}},
		{"empty cards", ImportCardsInput{SubjectID: uuid.New(), Cards: []CardDraft{}}, []string{"cards"}},
		{"blank back", ImportCardsInput{SubjectID: uuid.New(), Cards: []CardDraft{{Front: "a", Back: "b"}, {Front: "c", Back: " "}}}, []string{"cards[1].back"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldsOf(t, func() error { _, err := svc.ImportCards(ctx, tt.input); return err }())
			if strings.Join(fields, ",") != strings.Join(tt.want, ",") {
				t.Errorf("fields = %v, want %v", fields, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
