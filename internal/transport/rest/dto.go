package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
)

type subjectResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CardCount   int        `json:"card_count"`
	LastStudied *time.Time `json:"last_studied,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toSubjectResponse(s domain.Subject) subjectResponse {
	return subjectResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CardCount:   s.CardCount,
		LastStudied: s.LastStudied,
		CreatedAt:   s.CreatedAt,
	}
}

type cardResponse struct {
	ID           uuid.UUID  `json:"id"`
	SubjectID    uuid.UUID  `json:"subject_id"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	BoxNumber    int        `json:"box_number"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	NextReview   *time.Time `json:"next_review,omitempty"`
	ReviewCount  int        `json:"review_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toCardResponse(c domain.Card) cardResponse {
	return cardResponse{
		ID:           c.ID,
		SubjectID:    c.SubjectID,
		Front:        c.Front,
		Back:         c.Back,
		BoxNumber:    c.BoxNumber,
		LastReviewed: c.LastReviewed,
		NextReview:   c.NextReview,
		ReviewCount:  c.ReviewCount,
		CreatedAt:    c.CreatedAt,
	}
}

type answerResponse struct {
	CardID     uuid.UUID      `json:"card_id"`
	Outcome    domain.Outcome `json:"outcome"`
	Given      string         `json:"given"`
	Expected   string         `json:"expected"`
	PrevBox    int            `json:"prev_box"`
	NewBox     int            `json:"new_box"`
	NextReview time.Time      `json:"next_review"`
}

func toAnswerResponse(a study.AnswerResult) answerResponse {
	return answerResponse{
		CardID:     a.CardID,
		Outcome:    a.Outcome,
		Given:      a.Given,
		Expected:   a.Expected,
		PrevBox:    a.PrevBox,
		NewBox:     a.NewBox,
		NextReview: a.NextReview,
	}
}

type sessionResponse struct {
	ID          uuid.UUID            `json:"id"`
	SubjectID   uuid.UUID            `json:"subject_id"`
	Mode        domain.SelectionMode `json:"mode"`
	Level       *int                 `json:"level,omitempty"`
	Phase       domain.SessionPhase  `json:"phase"`
	CardID      *uuid.UUID           `json:"card_id,omitempty"`
	Front       string               `json:"front,omitempty"`
	Cursor      int                  `json:"cursor"`
	Total       int                  `json:"total"`
	Correct     int                  `json:"correct"`
	Incorrect   int                  `json:"incorrect"`
	Accuracy    float64              `json:"accuracy"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Last        *answerResponse      `json:"last,omitempty"`
}

func toSessionResponse(v study.SessionView) sessionResponse {
	resp := sessionResponse{
		ID:          v.ID,
		SubjectID:   v.SubjectID,
		Mode:        v.Mode,
		Level:       v.Level,
		Phase:       v.Phase,
		CardID:      v.CardID,
		Front:       v.Front,
		Cursor:      v.Cursor,
		Total:       v.Total,
		Correct:     v.Correct,
		Incorrect:   v.Incorrect,
		Accuracy:    v.Summary().Accuracy(),
		StartedAt:   v.StartedAt,
		CompletedAt: v.CompletedAt,
	}
	if v.Last != nil {
		last := toAnswerResponse(*v.Last)
		resp.Last = &last
	}
	return resp
}

type centerResponse struct {
	Level        int `json:"level"`
	IntervalDays int `json:"interval_days"`
	CardCount    int `json:"card_count"`
}

func toCenterResponses(centers []domain.TrainingCenter) []centerResponse {
	out := make([]centerResponse, len(centers))
	for i, c := range centers {
		out[i] = centerResponse{Level: c.Level, IntervalDays: c.IntervalDays, CardCount: c.CardCount}
	}
	return out
}

type recordedSessionResponse struct {
	ID          uuid.UUID            `json:"id"`
	SubjectID   uuid.UUID            `json:"subject_id"`
	Mode        domain.SelectionMode `json:"mode"`
	Level       *int                 `json:"level,omitempty"`
	TotalCards  int                  `json:"total_cards"`
	Correct     int                  `json:"correct"`
	Incorrect   int                  `json:"incorrect"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt time.Time            `json:"completed_at"`
	DurationSec float64              `json:"duration_sec"`
}

type statsResponse struct {
	TotalSessions  int                       `json:"total_sessions"`
	TotalCards     int                       `json:"total_cards"`
	TotalCorrect   int                       `json:"total_correct"`
	TotalIncorrect int                       `json:"total_incorrect"`
	Accuracy       float64                   `json:"accuracy"`
	RecentSessions []recordedSessionResponse `json:"recent_sessions"`
}

func toStatsResponse(s domain.StudyStats) statsResponse {
	recent := make([]recordedSessionResponse, len(s.RecentSessions))
	for i := range s.RecentSessions {
		rs := &s.RecentSessions[i]
		recent[i] = recordedSessionResponse{
			ID:          rs.ID,
			SubjectID:   rs.SubjectID,
			Mode:        rs.Mode,
			Level:       rs.Level,
			TotalCards:  rs.TotalCards,
			Correct:     rs.CorrectCount,
			Incorrect:   rs.IncorrectCount,
			StartedAt:   rs.StartedAt,
			CompletedAt: rs.CompletedAt,
			DurationSec: rs.Duration().Seconds(),
		}
	}
	return statsResponse{
		TotalSessions:  s.TotalSessions,
		TotalCards:     s.TotalCards,
		TotalCorrect:   s.TotalCorrect,
		TotalIncorrect: s.TotalIncorrect,
		Accuracy:       s.Accuracy,
		RecentSessions: recent,
	}
}
