package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuanvm/geminichat/internal/config"
)

func okHandler(hits *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSPreflight(t *testing.T) {
	var hits int
	h := CORS("*")(okHandler(&hits))

	req := httptest.NewRequest(http.MethodOptions, "/api/gemini", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, hits, "preflight must not reach the handler")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), config.SessionHeader)
}

func TestCORSPassesThrough(t *testing.T) {
	var hits int
	h := CORS("https://chat.example.com")(okHandler(&hits))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, 1, hits)
	assert.Equal(t, "https://chat.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

type fakeLimiter struct {
	count int
	err   error
	seen  []string
}

func (f *fakeLimiter) CheckAndIncrement(_ context.Context, sessionID string) (int, error) {
	f.seen = append(f.seen, sessionID)
	return f.count, f.err
}

func TestRateLimitUnderLimit(t *testing.T) {
	var hits int
	limiter := &fakeLimiter{count: 3}
	h := RateLimit(limiter, 6)(okHandler(&hits))

	req := httptest.NewRequest(http.MethodPost, "/api/gemini", nil)
	req.Header.Set(config.SessionHeader, "s-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, hits)
	assert.Equal(t, []string{"s-1"}, limiter.seen)
}

func TestRateLimitOverLimit(t *testing.T) {
	var hits int
	h := RateLimit(&fakeLimiter{count: 7}, 6)(okHandler(&hits))

	req := httptest.NewRequest(http.MethodPost, "/api/gemini", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, 0, hits)
	assert.Contains(t, rr.Body.String(), "RATE_LIMITED")
}

func TestRateLimitSkipsReads(t *testing.T) {
	var hits int
	limiter := &fakeLimiter{count: 100}
	h := RateLimit(limiter, 6)(okHandler(&hits))

	req := httptest.NewRequest(http.MethodGet, "/api/gemini/history", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, limiter.seen)
}

func TestRateLimitFailsOpen(t *testing.T) {
	var hits int
	h := RateLimit(&fakeLimiter{err: errors.New("db down")}, 6)(okHandler(&hits))

	req := httptest.NewRequest(http.MethodPost, "/api/gemini", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, hits)
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	h := Recover()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rr, req) })
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
