package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupstay/internal/inventory/service"
	"groupstay/internal/inventory/validator"
	"groupstay/internal/ledger"
	"groupstay/internal/ledger/snapshot"
	"groupstay/pkg/config"
	"groupstay/pkg/eventbus"
	"groupstay/pkg/logger"
	"groupstay/pkg/metrics"
)

func newRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	log := logger.New(logger.Config{Output: io.Discard})
	registry := ledger.NewRegistry(snapshot.NewMemoryStore(), log)
	svc := service.NewInventoryService(registry, validator.NewInventoryValidator(), eventbus.New(log), metrics.New(), &config.Config{Log: log})

	router := httprouter.New()
	NewInventoryHandler(svc, log).RegisterRoutes(router)
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestInventoryFlow(t *testing.T) {
	router := newRouter(t)

	rec, env := do(t, router, http.MethodPost, "/api/events", `{"eventId":"gala","eventName":"Spring Gala","eventDate":"2026-04-18"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	rec, env = do(t, router, http.MethodPost, "/api/events/gala/pools", `{"kind":"rooms","label":"Deluxe","capacity":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pool struct {
		ID        string `json:"id"`
		Available int    `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pool))
	assert.Equal(t, 10, pool.Available)

	rec, env = do(t, router, http.MethodPost, "/api/events/gala/pools/"+pool.ID+"/allocations", `{"delta":-9}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Pool   struct{ Available int } `json:"pool"`
		Alerts []struct{ Type string } `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Pool.Available)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "capacity_critical", result.Alerts[0].Type)

	rec, env = do(t, router, http.MethodPost, "/api/events/gala/pools/"+pool.ID+"/allocations", `{"delta":-2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "OVER_ALLOCATION", env.Code)

	rec, env = do(t, router, http.MethodGet, "/api/events/gala/pools?kind=room&available=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	rec, _ = do(t, router, http.MethodGet, "/api/events/gala/pools?available=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/api/events/gala/occupancy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"room":90,"transport":0,"dining":0,"activity":0}`, string(env.Data))

	rec, _ = do(t, router, http.MethodGet, "/api/events/gala/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="inventory-gala.csv"`)
	assert.Contains(t, rec.Body.String(), "Deluxe,10,9,1")

	rec, env = do(t, router, http.MethodDelete, "/api/events/gala", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event deleted successfully", env.Message)

	rec, env = do(t, router, http.MethodGet, "/api/events/gala", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event not found", env.Error)
}

func TestInvalidBodies(t *testing.T) {
	router := newRouter(t)

	rec, env := do(t, router, http.MethodPost, "/api/events", `{"eventId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", env.Error)

	rec, env = do(t, router, http.MethodPost, "/api/events", `{"eventId":"gala"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestImport(t *testing.T) {
	router := newRouter(t)
	do(t, router, http.MethodPost, "/api/events", `{"eventId":"expo","eventName":"Expo"}`)

	report := "TRANSPORT\nType,Capacity,Reserved,Available\nShuttle,20,5,15\n"
	rec, env := do(t, router, http.MethodPost, "/api/events/expo/import", report)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	rec, env = do(t, router, http.MethodGet, "/api/events/expo/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary map[string]struct{ Used, Available int }
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 5, summary["transport"].Used)
}
