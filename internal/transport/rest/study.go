package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
)

// ---------------------------------------------------------------------------
// Consumer interface
// ---------------------------------------------------------------------------

type studyService interface {
	StartSession(ctx context.Context, input study.StartSessionInput) (study.SessionView, error)
	SubmitAnswer(ctx context.Context, input study.SubmitAnswerInput) (study.AnswerResult, study.SessionView, error)
	NextCard(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (study.SessionView, error)
	AbandonSession(ctx context.Context, sessionID uuid.UUID) error
	TrainingCenters(ctx context.Context, subjectID uuid.UUID) ([]domain.TrainingCenter, error)
	WatchTrainingCenters(ctx context.Context, subjectID uuid.UUID) (<-chan []domain.TrainingCenter, error)
	Statistics(ctx context.Context) (domain.StudyStats, error)
}

// StudyHandler serves training sessions, training centers and statistics.
type StudyHandler struct {
	svc studyService
	log *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(svc studyService, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{svc: svc, log: logger.With("handler", "study")}
}

type startSessionRequest struct {
	Mode    domain.SelectionMode `json:"mode"`
	Level   *int                 `json:"level"`
	Shuffle *bool                `json:"shuffle"`
}

// Start handles POST /api/subjects/{id}/sessions. An empty body starts a
// STUDY session over every due card.
func (h *StudyHandler) Start(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	req := startSessionRequest{Mode: domain.SelectionModeStudy}
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	view, err := h.svc.StartSession(r.Context(), study.StartSessionInput{
		SubjectID: subjectID,
		Mode:      req.Mode,
		Level:     req.Level,
		Shuffle:   req.Shuffle,
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(view))
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

type submitAnswerResponse struct {
	Result  answerResponse  `json:"result"`
	Session sessionResponse `json:"session"`
}

// Answer handles POST /api/sessions/{id}/answer.
func (h *StudyHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	var req submitAnswerRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	result, view, err := h.svc.SubmitAnswer(r.Context(), study.SubmitAnswerInput{SessionID: sessionID, Answer: req.Answer})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, submitAnswerResponse{
		Result:  toAnswerResponse(result),
		Session: toSessionResponse(view),
	})
}

// Next handles POST /api/sessions/{id}/next.
func (h *StudyHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.svc.NextCard)
}

// Get handles GET /api/sessions/{id}.
func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.svc.GetSession)
}

// Abandon handles DELETE /api/sessions/{id}.
func (h *StudyHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	if err := h.svc.AbandonSession(r.Context(), sessionID); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StudyHandler) sessionOp(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (study.SessionView, error)) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	view, err := op(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(view))
}

// Centers handles GET /api/subjects/{id}/centers.
func (h *StudyHandler) Centers(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	centers, err := h.svc.TrainingCenters(r.Context(), subjectID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCenterResponses(centers))
}

// Stats handles GET /api/stats.
func (h *StudyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}
