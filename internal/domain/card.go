package domain

import (
	"time"

	"github.com/google/uuid"
)

// Leitner box bounds.
const (
	MinBox = 1
	MaxBox = 5
)

// Card is a question/answer pair scheduled with the Leitner boxes.
type Card struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	SubjectID    uuid.UUID
	Front        string
	Back         string
	BoxNumber    int
	LastReviewed *time.Time
	NextReview   *time.Time
	ReviewCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCard returns a card in the first box, due immediately.
func NewCard(userID, subjectID uuid.UUID, front, back string, now time.Time) Card {
	next := now
	return Card{
		ID:         uuid.New(),
		UserID:     userID,
		SubjectID:  subjectID,
		Front:      front,
		Back:       back,
		BoxNumber:  MinBox,
		NextReview: &next,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsDue returns true if the card should be reviewed at the given time.
//   - Cards without NextReview are always due.
//   - Other cards are due when NextReview <= now.
func (c *Card) IsDue(now time.Time) bool {
	if c.NextReview == nil {
		return true
	}
	return !c.NextReview.After(now)
}

// ValidBox reports whether box lies within [MinBox, MaxBox].
func ValidBox(box int) bool {
	return box >= MinBox && box <= MaxBox
}

// BoxCounts holds the number of cards per box, indexed by box number - 1.
type BoxCounts [MaxBox]int

// Total returns the sum over all boxes.
func (b BoxCounts) Total() int {
	var n int
	for _, c := range b {
		n += c
	}
	return n
}

// CountByBox reduces cards to per-box counts. Cards with an invalid box are skipped.
func CountByBox(cards []Card) BoxCounts {
	var counts BoxCounts
	for _, c := range cards {
		if ValidBox(c.BoxNumber) {
			counts[c.BoxNumber-1]++
		}
	}
	return counts
}
