package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/memorygym-backend/internal/transport/middleware"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// Handlers groups every REST handler mounted by NewRouter.
type Handlers struct {
	Health   *HealthHandler
	Subjects *SubjectHandler
	Study    *StudyHandler
}

// RouterOptions configures the middleware stack of NewRouter.
type RouterOptions struct {
	Logger *slog.Logger
	// Auth resolves the caller; API routes reject anonymous requests.
	Auth middleware.Middleware
	// CORS and RateLimit are optional.
	CORS      middleware.Middleware
	RateLimit middleware.Middleware
}

// NewRouter mounts health probes (unauthenticated) and the /api routes.
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("POST /api/subjects", h.Subjects.Create)
	api.HandleFunc("GET /api/subjects", h.Subjects.List)
	api.HandleFunc("GET /api/subjects/{id}", h.Subjects.Get)
	api.HandleFunc("DELETE /api/subjects/{id}", h.Subjects.Delete)
	api.HandleFunc("POST /api/subjects/{id}/cards", h.Subjects.CreateCard)
	api.HandleFunc("GET /api/subjects/{id}/cards", h.Subjects.ListCards)
	api.HandleFunc("POST /api/subjects/{id}/cards/import", h.Subjects.ImportCards)

	api.HandleFunc("GET /api/subjects/{id}/centers", h.Study.Centers)
	api.HandleFunc("GET /api/subjects/{id}/cards/stream", h.Study.StreamCenters)
	api.HandleFunc("POST /api/subjects/{id}/sessions", h.Study.Start)
	api.HandleFunc("GET /api/sessions/{id}", h.Study.Get)
	api.HandleFunc("DELETE /api/sessions/{id}", h.Study.Abandon)
	api.HandleFunc("POST /api/sessions/{id}/answer", h.Study.Answer)
	api.HandleFunc("POST /api/sessions/{id}/next", h.Study.Next)
	api.HandleFunc("GET /api/stats", h.Study.Stats)

	root := http.NewServeMux()
	root.HandleFunc("GET /live", h.Health.Live)
	root.HandleFunc("GET /ready", h.Health.Ready)
	root.HandleFunc("GET /health", h.Health.Health)
	root.Handle("/api/", middleware.Chain(opts.Auth, requireUser, opts.RateLimit)(api))

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(opts.Logger),
		middleware.Recovery(opts.Logger),
		opts.CORS,
	)(root)
}

// requireUser rejects requests that Auth left anonymous.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="memorygym"`)
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
