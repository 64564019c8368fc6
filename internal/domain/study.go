package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionSummary holds the terminal counters of a training session.
type SessionSummary struct {
	Total     int
	Correct   int
	Incorrect int
}

// Accuracy returns correct answers divided by total cards, or 0 for an empty session.
func (s SessionSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// StudySession is the record of a completed training session.
type StudySession struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	SubjectID      uuid.UUID
	Mode           SelectionMode
	Level          *int
	TotalCards     int
	CorrectCount   int
	IncorrectCount int
	StartedAt      time.Time
	CompletedAt    time.Time
	CreatedAt      time.Time
}

// Duration returns the wall time between start and completion.
func (s *StudySession) Duration() time.Duration {
	return s.CompletedAt.Sub(s.StartedAt)
}

// SessionTotals are sums over every recorded session of a user.
type SessionTotals struct {
	Sessions  int
	Cards     int
	Correct   int
	Incorrect int
}

// StudyStats aggregates recorded sessions of a user.
type StudyStats struct {
	TotalSessions  int
	TotalCards     int
	TotalCorrect   int
	TotalIncorrect int
	Accuracy       float64
	RecentSessions []StudySession
}

// TrainingCenter describes one Leitner box as a browsable training level.
type TrainingCenter struct {
	Level        int
	IntervalDays int
	CardCount    int
}
