package leitner

import (
	"time"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// Review is the result of scheduling one answer.
type Review struct {
	Outcome      domain.Outcome
	PrevBox      int
	BoxNumber    int
	NextReview   time.Time
	LastReviewed time.Time
	ReviewCount  int
}

// Apply returns a copy of card carrying the scheduled state.
func (r Review) Apply(card domain.Card) domain.Card {
	next := r.NextReview
	last := r.LastReviewed
	card.BoxNumber = r.BoxNumber
	card.NextReview = &next
	card.LastReviewed = &last
	card.ReviewCount = r.ReviewCount
	card.UpdatedAt = r.LastReviewed
	return card
}

// Promoted reports whether the card moved to a higher box.
func (r Review) Promoted() bool { return r.BoxNumber > r.PrevBox }

// Scheduler computes the next box and review time of a card. It has no state
// besides its interval table and is safe for concurrent use.
type Scheduler struct {
	table IntervalTable
}

// NewScheduler creates a Scheduler over table.
func NewScheduler(table IntervalTable) *Scheduler {
	return &Scheduler{table: table}
}

// DefaultScheduler returns a Scheduler over DefaultIntervals.
func DefaultScheduler() *Scheduler {
	return NewScheduler(DefaultIntervals)
}

// Table returns the interval table in use.
func (s *Scheduler) Table() IntervalTable { return s.table }

// Advance schedules card after an answer with the given outcome at now.
//   - CORRECT moves the card one box up, capped at MaxBox.
//   - INCORRECT resets the card to MinBox.
//
// The input card is not modified.
func (s *Scheduler) Advance(card domain.Card, outcome domain.Outcome, now time.Time) (Review, error) {
	if !domain.ValidBox(card.BoxNumber) {
		return Review{}, &domain.OutOfRangeError{Field: "box", Value: card.BoxNumber, Min: domain.MinBox, Max: domain.MaxBox}
	}

	var box int
	switch outcome {
	case domain.OutcomeCorrect:
		box = min(card.BoxNumber+1, domain.MaxBox)
	case domain.OutcomeIncorrect:
		box = domain.MinBox
	default:
		return Review{}, domain.NewValidationError("outcome", "must be CORRECT or INCORRECT")
	}

	interval, err := s.table.IntervalForBox(box)
	if err != nil {
		return Review{}, err
	}

	return Review{
		Outcome:      outcome,
		PrevBox:      card.BoxNumber,
		BoxNumber:    box,
		NextReview:   now.Add(interval),
		LastReviewed: now,
		ReviewCount:  card.ReviewCount + 1,
	}, nil
}
