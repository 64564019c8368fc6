package study

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study/leitner"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// StartSession freezes the due set of a subject and starts a session over it.
// An empty due set yields a COMPLETED view that is neither registered nor
// recorded.
func (s *Service) StartSession(ctx context.Context, input StartSessionInput) (SessionView, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return SessionView{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return SessionView{}, err
	}

	if _, err := s.subjects.GetByID(ctx, userID, input.SubjectID); err != nil {
		return SessionView{}, fmt.Errorf("get subject: %w", err)
	}

	cards, err := s.cards.ListBySubject(ctx, userID, input.SubjectID)
	if err != nil {
		return SessionView{}, fmt.Errorf("list cards: %w", err)
	}

	now := s.clock()
	dueSet, err := s.selector(input.Mode, input.Shuffle).Select(cards, now, input.Level)
	if err != nil {
		return SessionView{}, err
	}

	ls := &liveSession{
		id:        uuid.New(),
		userID:    userID,
		subjectID: input.SubjectID,
		mode:      input.Mode,
		level:     input.Level,
		lastSeen:  now,
	}
	ls.session = leitner.Start(dueSet, leitner.SessionOptions{
		Scheduler: s.scheduler,
		Sink:      s.sinkFor(ls),
		Now:       s.clock,
	})

	if ls.session.Phase() == domain.SessionPhaseCompleted {
		s.log.InfoContext(ctx, "nothing to study",
			slog.String("user_id", userID.String()),
			slog.String("subject_id", input.SubjectID.String()),
			slog.String("mode", input.Mode.String()),
		)
		return viewOf(ls), nil
	}

	if err := s.registry.add(ls); err != nil {
		return SessionView{}, fmt.Errorf("register session: %w", err)
	}

	s.log.InfoContext(ctx, "session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", ls.id.String()),
		slog.String("subject_id", input.SubjectID.String()),
		slog.String("mode", input.Mode.String()),
		slog.Int("cards", ls.session.Total()),
	)

	return viewOf(ls), nil
}

// SubmitAnswer evaluates an answer for the presented card. The reviewed card
// is handed to the writer; a persistence failure does not fail the call.
func (s *Service) SubmitAnswer(ctx context.Context, input SubmitAnswerInput) (AnswerResult, SessionView, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return AnswerResult{}, SessionView{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return AnswerResult{}, SessionView{}, err
	}

	ls, err := s.registry.get(userID, input.SessionID)
	if err != nil {
		return AnswerResult{}, SessionView{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	eval, err := ls.session.SubmitAnswer(input.Answer)
	if err != nil {
		return AnswerResult{}, SessionView{}, err
	}
	ls.lastSeen = s.clock()

	return answerOf(eval), viewOf(ls), nil
}

// NextCard moves past the evaluated card. When the due set is exhausted the
// session is recorded and removed from the registry.
func (s *Service) NextCard(ctx context.Context, sessionID uuid.UUID) (SessionView, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return SessionView{}, domain.ErrUnauthorized
	}

	ls, err := s.registry.get(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := ls.session.Advance(); err != nil {
		return SessionView{}, err
	}
	ls.lastSeen = s.clock()

	if ls.session.Phase() == domain.SessionPhaseCompleted {
		s.registry.remove(ls.id)
		s.finish(ctx, ls)
	}

	return viewOf(ls), nil
}

// GetSession returns the current view of a live session.
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID) (SessionView, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return SessionView{}, domain.ErrUnauthorized
	}

	ls, err := s.registry.get(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.lastSeen = s.clock()

	return viewOf(ls), nil
}

// AbandonSession discards a live session. Cards already reviewed stay
// persisted; nothing is recorded for the session itself.
func (s *Service) AbandonSession(ctx context.Context, sessionID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	ls, err := s.registry.get(userID, sessionID)
	if err != nil {
		return err
	}
	s.registry.remove(ls.id)

	s.log.InfoContext(ctx, "session abandoned",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
	)
	return nil
}

// RecordCompleted stores a completed session and moves the subject's
// last-studied time forward, in one transaction.
func (s *Service) RecordCompleted(ctx context.Context, session domain.StudySession) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.sessions.Create(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if err := s.subjects.TouchLastStudied(ctx, session.UserID, session.SubjectID, session.CompletedAt); err != nil {
			return fmt.Errorf("touch subject: %w", err)
		}
		return nil
	})
}

// sinkFor routes effects of ls: reviewed cards go to the writer, the
// completion is kept for finish.
func (s *Service) sinkFor(ls *liveSession) leitner.EffectSink {
	return leitner.SinkFunc(func(e leitner.Effect) {
		switch e.Kind {
		case leitner.EffectCardReviewed:
			s.writer.Enqueue(e.Card)
		case leitner.EffectSessionCompleted:
			ls.completion = &e
		}
	})
}

// finish records the completion of ls. Failures are logged only.
func (s *Service) finish(ctx context.Context, ls *liveSession) {
	if ls.completion == nil || ls.completion.Summary.Total == 0 {
		return
	}
	c := ls.completion

	record := domain.StudySession{
		ID:             ls.id,
		UserID:         ls.userID,
		SubjectID:      ls.subjectID,
		Mode:           ls.mode,
		Level:          ls.level,
		TotalCards:     c.Summary.Total,
		CorrectCount:   c.Summary.Correct,
		IncorrectCount: c.Summary.Incorrect,
		StartedAt:      c.StartedAt,
		CompletedAt:    c.CompletedAt,
		CreatedAt:      c.CompletedAt,
	}

	if err := s.RecordCompleted(context.WithoutCancel(ctx), record); err != nil {
		s.log.ErrorContext(ctx, "record completed session",
			slog.String("session_id", ls.id.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	s.log.InfoContext(ctx, "session completed",
		slog.String("user_id", ls.userID.String()),
		slog.String("session_id", ls.id.String()),
		slog.Int("total", c.Summary.Total),
		slog.Int("correct", c.Summary.Correct),
		slog.Int("incorrect", c.Summary.Incorrect),
	)
}

// viewOf projects ls. The caller holds ls.mu or owns ls exclusively.
func viewOf(ls *liveSession) SessionView {
	sess := ls.session
	v := SessionView{
		ID:        ls.id,
		SubjectID: ls.subjectID,
		Mode:      ls.mode,
		Level:     ls.level,
		Phase:     sess.Phase(),
		Cursor:    sess.Cursor(),
		Total:     sess.Total(),
		Correct:   sess.Correct(),
		Incorrect: sess.Incorrect(),
		StartedAt: sess.StartedAt(),
	}

	if card, ok := sess.Current(); ok {
		id := card.ID
		v.CardID = &id
		v.Front = card.Front
	}
	if eval, ok := sess.LastEvaluation(); ok {
		a := answerOf(eval)
		v.Last = &a
	}
	if v.Phase == domain.SessionPhaseCompleted {
		at := sess.CompletedAt()
		v.CompletedAt = &at
	}
	return v
}

func answerOf(eval leitner.Evaluation) AnswerResult {
	return AnswerResult{
		CardID:     eval.Card.ID,
		Outcome:    eval.Outcome,
		Given:      eval.Answer,
		Expected:   eval.Card.Back,
		PrevBox:    eval.Review.PrevBox,
		NewBox:     eval.Review.BoxNumber,
		NextReview: eval.Review.NextReview,
	}
}
