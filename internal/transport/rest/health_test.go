package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/memorygym-backend/internal/service/persist"
)

type dbPingerMock struct {
	err error
}

func (m *dbPingerMock) Ping(_ context.Context) error {
	return m.err
}

type sessionCounterMock int

func (m sessionCounterMock) ActiveSessions() int { return int(m) }

type writerStatsMock persist.Stats

func (m writerStatsMock) Stats() persist.Stats { return persist.Stats(m) }

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLive_Always200(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(&dbPingerMock{err: errors.New("down")}, nil, nil, "test-version")

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"db up", nil, http.StatusOK, "ok"},
		{"db down", errors.New("connection refused"), http.StatusServiceUnavailable, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHealthHandler(&dbPingerMock{err: tt.pingErr}, nil, nil, "test-version")

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, decodeHealth(t, rec).Status)
		})
	}
}

func TestHealth_AllOK(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(&dbPingerMock{}, sessionCounterMock(3), writerStatsMock{Written: 7}, "v1.0.0")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)

	db := resp.Components["database"]
	assert.Equal(t, "ok", db.Status)
	assert.NotEmpty(t, db.Latency)

	assert.EqualValues(t, 3, resp.Components["sessions"].Details["active"])
	assert.Equal(t, "ok", resp.Components["card_writer"].Status)
	assert.EqualValues(t, 7, resp.Components["card_writer"].Details["written"])
}

func TestHealth_Degraded(t *testing.T) {
	t.Parallel()
	h := NewHealthHandler(&dbPingerMock{err: errors.New("connection refused")}, nil, writerStatsMock{Failed: 1}, "v1.0.0")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "down", resp.Status)
	assert.Equal(t, "down", resp.Components["database"].Status)
	assert.Equal(t, "degraded", resp.Components["card_writer"].Status)
	assert.NotContains(t, resp.Components, "sessions")
}
