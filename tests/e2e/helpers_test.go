//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/memorygym-backend/internal/adapter/postgres"
	cardrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/card"
	sessionrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/session"
	subjectrepo "github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/subject"
	"github.com/heartmarshall/memorygym-backend/internal/adapter/postgres/testhelper"
	authpkg "github.com/heartmarshall/memorygym-backend/internal/auth"
	"github.com/heartmarshall/memorygym-backend/internal/config"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/persist"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
	"github.com/heartmarshall/memorygym-backend/internal/service/subject"
	"github.com/heartmarshall/memorygym-backend/internal/transport/middleware"
	"github.com/heartmarshall/memorygym-backend/internal/transport/rest"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *authpkg.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer wires the application the way the server binary does,
// backed by a real PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	cards := cardrepo.New(pool)
	subjects := subjectrepo.New(pool)
	sessions := sessionrepo.New(pool)

	ctx, cancel := context.WithCancel(context.Background())
	feed := cardrepo.NewFeed(logger, pool, cards)

	writer := persist.NewWriter(logger, cards, persist.DefaultConfig(),
		persist.WithFailureHandler(func(perr domain.PersistenceError) {
			t.Errorf("card update lost: %v", &perr)
		}),
	)

	cfg := study.DefaultConfig()
	studySvc := study.NewService(logger, cards, subjects, sessions, writer, feed, txm, cfg)
	subjectSvc := subject.NewService(logger, subjects, cards, txm)

	jwtMgr := authpkg.NewJWTManager("test-secret-at-least-32-chars-long!!", "test-issuer", 15*time.Minute)

	handler := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, studySvc, writer, "test-version"),
		Subjects: rest.NewSubjectHandler(subjectSvc, logger),
		Study:    rest.NewStudyHandler(studySvc, logger),
	}, rest.RouterOptions{
		Logger: logger,
		Auth:   middleware.Auth(jwtMgr),
		CORS: middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,DELETE,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
	})

	srv := httptest.NewUnstartedServer(handler)
	srv.Config.BaseContext = func(_ net.Listener) context.Context { return ctx }
	srv.Start()
	t.Cleanup(func() {
		cancel()
		srv.Close()
		closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = writer.Close(closeCtx)
	})

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		jwt:    jwtMgr,
	}
}

// newUser returns a fresh user id with a valid access token.
func (ts *testServer) newUser(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	tok, err := ts.jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return tok, userID
}

// do sends a JSON request and decodes the response into out when out is not nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp.StatusCode
}

// ---------------------------------------------------------------------------
// Response shapes used by the scenarios.
// ---------------------------------------------------------------------------

type subjectJSON struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"card_count"`
}

type cardJSON struct {
	ID          uuid.UUID  `json:"id"`
	Front       string     `json:"front"`
	Back        string     `json:"back"`
	BoxNumber   int        `json:"box_number"`
	NextReview  *time.Time `json:"next_review"`
	ReviewCount int        `json:"review_count"`
}

type answerJSON struct {
	Outcome  string `json:"outcome"`
	Expected string `json:"expected"`
	PrevBox  int    `json:"prev_box"`
	NewBox   int    `json:"new_box"`
}

type sessionJSON struct {
	ID        uuid.UUID `json:"id"`
	Phase     string    `json:"phase"`
	Front     string    `json:"front"`
	Cursor    int       `json:"cursor"`
	Total     int       `json:"total"`
	Correct   int       `json:"correct"`
	Incorrect int       `json:"incorrect"`
}

type answerResultJSON struct {
	Result  answerJSON  `json:"result"`
	Session sessionJSON `json:"session"`
}

type errorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type statsJSON struct {
	TotalSessions int     `json:"total_sessions"`
	TotalCards    int     `json:"total_cards"`
	TotalCorrect  int     `json:"total_correct"`
	Accuracy      float64 `json:"accuracy"`
}

// createSubjectWithCards creates a subject and imports the given front/back pairs.
func (ts *testServer) createSubjectWithCards(t *testing.T, token, name string, pairs ...[2]string) subjectJSON {
	t.Helper()

	var s subjectJSON
	status := ts.do(t, http.MethodPost, "/api/subjects", token, map[string]any{"name": name}, &s)
	require.Equal(t, http.StatusCreated, status)

	if len(pairs) == 0 {
		return s
	}
	cards := make([]map[string]string, len(pairs))
	for i, p := range pairs {
		cards[i] = map[string]string{"front": p[0], "back": p[1]}
	}
	var imported map[string]int
	status = ts.do(t, http.MethodPost, "/api/subjects/"+s.ID.String()+"/cards/import", token, map[string]any{"cards": cards}, &imported)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, len(pairs), imported["imported"])
	return s
}

// listCards returns the cards of a subject keyed by front.
func (ts *testServer) listCards(t *testing.T, token string, subjectID uuid.UUID) map[string]cardJSON {
	t.Helper()
	var cards []cardJSON
	status := ts.do(t, http.MethodGet, "/api/subjects/"+subjectID.String()+"/cards", token, nil, &cards)
	require.Equal(t, http.StatusOK, status)

	out := make(map[string]cardJSON, len(cards))
	for _, c := range cards {
		out[c.Front] = c
	}
	return out
}
