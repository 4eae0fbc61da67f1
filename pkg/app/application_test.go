package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupstay/pkg/config"
	"groupstay/pkg/logger"
	"groupstay/pkg/metrics"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type itemHandler struct{}

func (itemHandler) RegisterRoutes(r *httprouter.Router) {
	r.GET("/api/items/:id", func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		_, _ = w.Write([]byte("item " + ps.ByName("id")))
	})
}

type statsHandler struct{}

func (statsHandler) RegisterRoutes(r *httprouter.Router) {
	r.GET("/api/items/stats/daily", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("daily"))
	})
}

func (statsHandler) MountPoints() []string { return []string{"/api/items/stats/"} }

func newApp(t *testing.T, store Pinger) *Application {
	t.Helper()
	cfg := &config.Config{
		Port:              "0",
		Log:               logger.New(logger.Config{Output: io.Discard}),
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
	}
	a := NewApplication(cfg, metrics.New())
	a.SetApp(store, itemHandler{}, statsHandler{})
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutesAndMounts(t *testing.T) {
	h := newApp(t, pinger{}).Handler()

	rec := get(h, "/api/items/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item 7", rec.Body.String())

	rec = get(h, "/api/items/stats/daily")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "daily", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthAndReady(t *testing.T) {
	h := newApp(t, pinger{}).Handler()
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
	assert.Equal(t, http.StatusOK, get(h, "/ready").Code)

	down := newApp(t, pinger{err: errors.New("connection refused")}).Handler()
	rec := get(down, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","store":"error"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newApp(t, pinger{}).Handler()
	get(h, "/api/items/1")

	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "groupstay_http_requests_total")
}
