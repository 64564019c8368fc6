package leitner

import (
	"math/rand/v2"
	"time"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// SelectDue returns the cards that are due at now, keeping input order.
// When level is non-nil only cards in that box are considered.
// The input slice is never modified; the result may be empty.
func SelectDue(cards []domain.Card, now time.Time, level *int) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if !c.IsDue(now) {
			continue
		}
		if level != nil && c.BoxNumber != *level {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SelectLevel returns every card in box level regardless of due time,
// keeping input order. This is the training-center browsing mode.
func SelectLevel(cards []domain.Card, level int) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if c.BoxNumber == level {
			out = append(out, c)
		}
	}
	return out
}

// Selector builds the due set of a session for one configuration.
type Selector struct {
	Mode  domain.SelectionMode
	Order domain.OrderPolicy
	// Rand drives OrderShuffle. A nil Rand falls back to the global source.
	Rand *rand.Rand
}

// StudySelector filters by due time and keeps insertion order.
func StudySelector() Selector {
	return Selector{Mode: domain.SelectionModeStudy, Order: domain.OrderInsertion}
}

// TrainingSelector selects a whole box and keeps insertion order.
func TrainingSelector() Selector {
	return Selector{Mode: domain.SelectionModeTraining, Order: domain.OrderInsertion}
}

// WithShuffle returns a copy of s that shuffles its result using r.
func (s Selector) WithShuffle(r *rand.Rand) Selector {
	s.Order = domain.OrderShuffle
	s.Rand = r
	return s
}

// Validate checks the configuration against the requested level.
func (s Selector) Validate(level *int) error {
	var errs []domain.FieldError

	if !s.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "must be STUDY or TRAINING"})
	}
	if s.Order != "" && !s.Order.IsValid() {
		errs = append(errs, domain.FieldError{Field: "order", Message: "must be INSERTION or SHUFFLE"})
	}
	if s.Mode == domain.SelectionModeTraining && level == nil {
		errs = append(errs, domain.FieldError{Field: "level", Message: "required in TRAINING mode"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	if level != nil && !domain.ValidBox(*level) {
		return &domain.OutOfRangeError{Field: "level", Value: *level, Min: domain.MinBox, Max: domain.MaxBox}
	}
	return nil
}

// Select applies the configured mode and order policy.
func (s Selector) Select(cards []domain.Card, now time.Time, level *int) ([]domain.Card, error) {
	if err := s.Validate(level); err != nil {
		return nil, err
	}

	var out []domain.Card
	switch s.Mode {
	case domain.SelectionModeTraining:
		out = SelectLevel(cards, *level)
	default:
		out = SelectDue(cards, now, level)
	}

	if s.Order == domain.OrderShuffle {
		shuffle(out, s.Rand)
	}
	return out, nil
}

func shuffle(cards []domain.Card, r *rand.Rand) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if r == nil {
		rand.Shuffle(len(cards), swap)
		return
	}
	r.Shuffle(len(cards), swap)
}
