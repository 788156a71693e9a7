package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func byHeader(r *http.Request) string { return r.Header.Get("X-Client") }

func do(h http.Handler, client string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/x/plan", nil)
	req.Header.Set("X-Client", client)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimit_PerClient(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := New(5, 1, byHeader)
	rl.now = func() time.Time { return now }
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, do(h, "a"))
	assert.Equal(t, http.StatusTooManyRequests, do(h, "a"))
	assert.Equal(t, http.StatusOK, do(h, "b"), "other clients keep their own budget")

	now = now.Add(12 * time.Second)
	assert.Equal(t, http.StatusOK, do(h, "a"), "token refills after a fifth of a minute")
}

func TestLimit_RetryAfterHeader(t *testing.T) {
	rl := New(5, 1, byHeader)
	h := rl.Limit(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	do(h, "a")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Client", "a")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "13", rec.Header().Get("Retry-After"))
}

func TestGetLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := New(5, 1, byHeader)
	rl.now = func() time.Time { return now }

	rl.getLimiter("a")
	rl.getLimiter("b")
	assert.Equal(t, 2, rl.Len())

	now = now.Add(idleTTL + time.Minute)
	rl.getLimiter("c")
	assert.Equal(t, 1, rl.Len())
}
