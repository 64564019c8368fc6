package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/heartmarshall/memorygym-backend/internal/service/persist"
)

const pingTimeout = 3 * time.Second

// ---------------------------------------------------------------------------
// Consumer interfaces
// ---------------------------------------------------------------------------

type dbPinger interface {
	Ping(ctx context.Context) error
}

type sessionCounter interface {
	ActiveSessions() int
}

type writerStats interface {
	Stats() persist.Stats
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db       dbPinger
	sessions sessionCounter
	writer   writerStats
	version  string
}

// NewHealthHandler creates a HealthHandler. sessions and writer may be nil.
func NewHealthHandler(db dbPinger, sessions sessionCounter, writer writerStats, version string) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions, writer: writer, version: version}
}

// HealthResponse is the JSON response for /health, /live and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string         `json:"status"`
	Latency string         `json:"latency,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready is the readiness probe. 200 when the database answers a ping, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "down", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports the database with ping latency, the live session registry
// and the card writer counters. Only the database affects the overall status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	components := make(map[string]CompStatus, 3)
	status, code := "ok", http.StatusOK

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		components["database"] = CompStatus{Status: "down"}
		status, code = "down", http.StatusServiceUnavailable
	} else {
		components["database"] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	if h.sessions != nil {
		components["sessions"] = CompStatus{
			Status:  "ok",
			Details: map[string]any{"active": h.sessions.ActiveSessions()},
		}
	}

	if h.writer != nil {
		st := h.writer.Stats()
		writerStatus := "ok"
		if st.Failed > 0 {
			writerStatus = "degraded"
		}
		components["card_writer"] = CompStatus{
			Status: writerStatus,
			Details: map[string]any{
				"written":  st.Written,
				"failed":   st.Failed,
				"fallback": st.Fallback,
			},
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
