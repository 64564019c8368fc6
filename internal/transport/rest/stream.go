package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/heartmarshall/memorygym-backend/internal/service/study"
)

// streamKeepAlive is the interval of SSE comment frames that keep idle
// proxies from closing the stream.
const streamKeepAlive = 25 * time.Second

// StreamCenters handles GET /api/subjects/{id}/cards/stream. Each card
// snapshot of the subject is sent as a "centers" Server-Sent Event.
func (h *StudyHandler) StreamCenters(w http.ResponseWriter, r *http.Request) {
	subjectID, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	updates, err := h.svc.WatchTrainingCenters(r.Context(), subjectID)
	if err != nil {
		if errors.Is(err, study.ErrFeedUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
			return
		}
		writeDomainError(w, r, h.log, err)
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.log.WarnContext(r.Context(), "stream flush unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for seq := 1; ; {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case centers, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(toCenterResponses(centers))
			if err != nil {
				h.log.ErrorContext(r.Context(), "encode centers", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: centers\ndata: %s\n\n", seq, data); err != nil {
				return
			}
			seq++
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
