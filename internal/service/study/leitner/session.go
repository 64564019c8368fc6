package leitner

import (
	"time"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// EffectKind identifies an effect emitted by a Session.
type EffectKind string

const (
	// EffectCardReviewed carries an updated card that must be persisted.
	EffectCardReviewed EffectKind = "CARD_REVIEWED"
	// EffectSessionCompleted carries the final counters of the session.
	EffectSessionCompleted EffectKind = "SESSION_COMPLETED"
)

// Effect is a side effect requested by the state machine. The machine never
// waits for an effect to be handled.
type Effect struct {
	Kind        EffectKind
	Card        domain.Card
	Review      Review
	Summary     domain.SessionSummary
	StartedAt   time.Time
	CompletedAt time.Time
}

// EffectSink receives effects. Emit must not block.
type EffectSink interface {
	Emit(Effect)
}

// SinkFunc adapts a function to EffectSink.
type SinkFunc func(Effect)

func (f SinkFunc) Emit(e Effect) { f(e) }

// Evaluation describes a submitted answer.
type Evaluation struct {
	Card    domain.Card
	Answer  string
	Outcome domain.Outcome
	Review  Review
	Updated domain.Card
}

// SessionOptions configures a Session. Zero values select defaults.
type SessionOptions struct {
	Scheduler *Scheduler
	Sink      EffectSink
	Now       func() time.Time
}

// Session drives a learner through a frozen due set, one card at a time.
//
//	PRESENTING --SubmitAnswer--> EVALUATED --Advance--> PRESENTING | COMPLETED
//
// A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	dueSet    []domain.Card
	cursor    int
	correct   int
	incorrect int
	phase     domain.SessionPhase
	last      *Evaluation

	scheduler *Scheduler
	sink      EffectSink
	now       func() time.Time

	startedAt   time.Time
	completedAt time.Time
	effects     []Effect
}

// Start creates a session over a snapshot of dueSet. An empty due set
// completes immediately with zero counters.
func Start(dueSet []domain.Card, opts SessionOptions) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = DefaultScheduler()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	frozen := make([]domain.Card, len(dueSet))
	copy(frozen, dueSet)

	s := &Session{
		dueSet:    frozen,
		phase:     domain.SessionPhasePresenting,
		scheduler: opts.Scheduler,
		sink:      opts.Sink,
		now:       opts.Now,
		startedAt: opts.Now(),
	}
	if len(frozen) == 0 {
		s.complete()
	}
	return s
}

// SubmitAnswer evaluates input against the current card. Valid only while
// PRESENTING. The updated card is emitted as EffectCardReviewed.
func (s *Session) SubmitAnswer(input string) (Evaluation, error) {
	if s.phase != domain.SessionPhasePresenting {
		return Evaluation{}, &domain.InvalidTransitionError{Op: "submit_answer", Phase: s.phase}
	}

	card := s.dueSet[s.cursor]
	outcome := domain.OutcomeIncorrect
	if domain.AnswersMatch(input, card.Back) {
		outcome = domain.OutcomeCorrect
	}

	review, err := s.scheduler.Advance(card, outcome, s.now())
	if err != nil {
		return Evaluation{}, err
	}

	if outcome == domain.OutcomeCorrect {
		s.correct++
	} else {
		s.incorrect++
	}

	eval := Evaluation{
		Card:    card,
		Answer:  input,
		Outcome: outcome,
		Review:  review,
		Updated: review.Apply(card),
	}
	s.last = &eval
	s.phase = domain.SessionPhaseEvaluated

	s.emit(Effect{Kind: EffectCardReviewed, Card: eval.Updated, Review: review})

	return eval, nil
}

// Advance moves past the evaluated card. Valid only while EVALUATED.
func (s *Session) Advance() error {
	if s.phase != domain.SessionPhaseEvaluated {
		return &domain.InvalidTransitionError{Op: "advance", Phase: s.phase}
	}

	s.cursor++
	s.last = nil
	if s.cursor == len(s.dueSet) {
		s.complete()
		return nil
	}
	s.phase = domain.SessionPhasePresenting
	return nil
}

func (s *Session) complete() {
	s.phase = domain.SessionPhaseCompleted
	s.completedAt = s.now()
	s.emit(Effect{
		Kind:        EffectSessionCompleted,
		Summary:     s.Summary(),
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
	})
}

func (s *Session) emit(e Effect) {
	s.effects = append(s.effects, e)
	if s.sink != nil {
		s.sink.Emit(e)
	}
}

// Phase returns the current phase.
func (s *Session) Phase() domain.SessionPhase { return s.phase }

// Current returns the card being presented or evaluated. It returns false
// once the session is completed.
func (s *Session) Current() (domain.Card, bool) {
	if s.phase == domain.SessionPhaseCompleted {
		return domain.Card{}, false
	}
	return s.dueSet[s.cursor], true
}

// LastEvaluation returns the evaluation of the current card while EVALUATED.
func (s *Session) LastEvaluation() (Evaluation, bool) {
	if s.last == nil {
		return Evaluation{}, false
	}
	return *s.last, true
}

// Cursor returns the index of the card being presented or evaluated, and
// Total once the session is completed.
func (s *Session) Cursor() int { return s.cursor }

// Answered returns the number of cards evaluated so far. It equals Cursor,
// plus one while the current card is EVALUATED, and always equals
// Correct+Incorrect.
func (s *Session) Answered() int {
	if s.phase == domain.SessionPhaseEvaluated {
		return s.cursor + 1
	}
	return s.cursor
}

// Total returns the size of the due set.
func (s *Session) Total() int { return len(s.dueSet) }

// Correct returns the number of correct answers so far.
func (s *Session) Correct() int { return s.correct }

// Incorrect returns the number of incorrect answers so far.
func (s *Session) Incorrect() int { return s.incorrect }

// Summary returns the counters; on a completed session they are final.
func (s *Session) Summary() domain.SessionSummary {
	return domain.SessionSummary{Total: len(s.dueSet), Correct: s.correct, Incorrect: s.incorrect}
}

// StartedAt returns the time Start was called.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// CompletedAt returns the completion time, zero while the session is running.
func (s *Session) CompletedAt() time.Time { return s.completedAt }

// Effects returns every effect emitted so far, oldest first.
func (s *Session) Effects() []Effect {
	out := make([]Effect, len(s.effects))
	copy(out, s.effects)
	return out
}
