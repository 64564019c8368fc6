package study

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// SessionView is a read-only projection of a live or just-completed session.
type SessionView struct {
	ID          uuid.UUID
	SubjectID   uuid.UUID
	Mode        domain.SelectionMode
	Level       *int
	Phase       domain.SessionPhase
	CardID      *uuid.UUID
	Front       string
	Cursor      int
	Total       int
	Correct     int
	Incorrect   int
	StartedAt   time.Time
	CompletedAt *time.Time
	// Last is set while the current card is EVALUATED.
	Last *AnswerResult
}

// Summary returns the counters of the view.
func (v SessionView) Summary() domain.SessionSummary {
	return domain.SessionSummary{Total: v.Total, Correct: v.Correct, Incorrect: v.Incorrect}
}

// AnswerResult describes one evaluated answer.
type AnswerResult struct {
	CardID     uuid.UUID
	Outcome    domain.Outcome
	Given      string
	Expected   string
	PrevBox    int
	NewBox     int
	NextReview time.Time
}
