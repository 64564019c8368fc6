package subject

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// CreateSubject creates a subject for the current user.
func (s *Service) CreateSubject(ctx context.Context, input CreateSubjectInput) (domain.Subject, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Subject{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Subject{}, err
	}

	created, err := s.subjects.Create(ctx, domain.Subject{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   s.clock(),
	})
	if err != nil {
		return domain.Subject{}, fmt.Errorf("create subject: %w", err)
	}

	s.log.InfoContext(ctx, "subject created",
		slog.String("user_id", userID.String()),
		slog.String("subject_id", created.ID.String()),
	)
	return created, nil
}

// ListSubjects returns the subjects of the current user ordered by name.
func (s *Service) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	subjects, err := s.subjects.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// GetSubject returns one subject with its card count.
func (s *Service) GetSubject(ctx context.Context, id uuid.UUID) (domain.Subject, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Subject{}, domain.ErrUnauthorized
	}

	subject, err := s.subjects.GetByID(ctx, userID, id)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("get subject: %w", err)
	}
	return subject, nil
}

// DeleteSubject removes a subject with its cards and recorded sessions.
func (s *Service) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.subjects.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}

	s.log.InfoContext(ctx, "subject deleted",
		slog.String("user_id", userID.String()),
		slog.String("subject_id", id.String()),
	)
	return nil
}
