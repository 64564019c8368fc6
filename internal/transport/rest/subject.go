package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
)

// ---------------------------------------------------------------------------
// Consumer interface
// ---------------------------------------------------------------------------

type subjectService interface {
	CreateSubject(ctx context.Context, input subject.CreateSubjectInput) (domain.Subject, error)
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	GetSubject(ctx context.Context, id uuid.UUID) (domain.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
	CreateCard(ctx context.Context, input subject.CreateCardInput) (domain.Card, error)
	ListCards(ctx context.Context, subjectID uuid.UUID) ([]domain.Card, error)
	ImportCards(ctx context.Context, input subject.ImportCardsInput) (int, error)
}

// SubjectHandler serves subject and card authoring endpoints.
type SubjectHandler struct {
	svc subjectService
	log *slog.Logger
}

// NewSubjectHandler creates a SubjectHandler.
func NewSubjectHandler(svc subjectService, logger *slog.Logger) *SubjectHandler {
	return &SubjectHandler{svc: svc, log: logger.With("handler", "subject")}
}

// Create handles POST /api/subjects.
func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input subject.CreateSubjectInput
	if err := decodeJSON(w, r, &input, false); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	s, err := h.svc.CreateSubject(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubjectResponse(s))
}

// List handles GET /api/subjects.
func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.ListSubjects(r.Context())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := make([]subjectResponse, len(subjects))
	for i, s := range subjects {
		resp[i] = toSubjectResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/subjects/{id}.
func (h *SubjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	s, err := h.svc.GetSubject(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubjectResponse(s))
}

// Delete handles DELETE /api/subjects/{id}.
func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	if err := h.svc.DeleteSubject(r.Context(), id); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createCardRequest struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// CreateCard handles POST /api/subjects/{id}/cards.
func (h *SubjectHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	var req createCardRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	card, err := h.svc.CreateCard(r.Context(), subject.CreateCardInput{
		SubjectID: subjectID,
		Front:     req.Front,
		Back:      req.Back,
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

// ListCards handles GET /api/subjects/{id}/cards.
func (h *SubjectHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	cards, err := h.svc.ListCards(r.Context(), subjectID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := make([]cardResponse, len(cards))
	for i, c := range cards {
		resp[i] = toCardResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

type importCardsRequest struct {
	Cards []subject.CardDraft `json:"cards"`
}

// ImportCards handles POST /api/subjects/{id}/cards/import.
func (h *SubjectHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	var req importCardsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	n, err := h.svc.ImportCards(r.Context(), subject.ImportCardsInput{SubjectID: subjectID, Cards: req.Cards})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": n})
}
