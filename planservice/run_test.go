package planservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathmeshSose/ai-travel-agent/internal/cache"
	"github.com/PrathmeshSose/ai-travel-agent/internal/config"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store/memory"
)

type flakyHealth struct {
	calls   atomic.Int32
	healthy int32
}

func (f *flakyHealth) IsHealthy() bool    { return f.calls.Add(1) > f.healthy }
func (f *flakyHealth) Unhealthy() []string { return []string{"store"} }

func TestCalculateStartupHealthTimeout(t *testing.T) {
	assert.Equal(t, 60, calculateStartupHealthTimeout(1))
	assert.Equal(t, 60, calculateStartupHealthTimeout(30))
	assert.Equal(t, 120, calculateStartupHealthTimeout(60))
}

func TestWaitUntilHealthy_BecomesHealthy(t *testing.T) {
	h := &flakyHealth{healthy: 2}
	err := waitUntilHealthy(context.Background(), config.NewForTesting(), h)
	require.NoError(t, err)
	assert.EqualValues(t, 3, h.calls.Load())
}

func TestWaitUntilHealthy_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := waitUntilHealthy(ctx, config.NewForTesting(), &flakyHealth{healthy: 1 << 30})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildHandler_ServesHealthAndSessions(t *testing.T) {
	cfg := config.NewForTesting()
	h, err := buildHandler(cfg, zerolog.Nop(), memory.New(), cache.NewMemory(), &flakyHealth{})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"UP"`)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("")))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestBuildHandler_SessionCreationLimited(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SessionRateLimitPerMinute = 1
	cfg.SessionRateLimitBurst = 2
	h, err := buildHandler(cfg, zerolog.Nop(), memory.New(), cache.NewMemory(), &flakyHealth{})
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		req.RemoteAddr = "198.51.100.20:4000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestBuildHandler_RejectsBadTrustedProxy(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.TrustedProxies = []string{"10.0.0.0/99"}
	_, err := buildHandler(cfg, zerolog.Nop(), memory.New(), cache.NewMemory(), &flakyHealth{})
	assert.Error(t, err)
}

func TestNewHTTPServer_WriteTimeoutCoversProviders(t *testing.T) {
	cfg := config.NewForTesting()
	srv := newHTTPServer(context.Background(), cfg, http.NotFoundHandler())
	assert.Equal(t, cfg.GetHTTPAddr(), srv.Addr)
	assert.Greater(t, srv.WriteTimeout, cfg.SearchTimeout()+cfg.CompletionTimeout())
}
