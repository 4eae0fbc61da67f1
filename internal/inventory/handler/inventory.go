package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"groupstay/internal/inventory/service"
	apperrors "groupstay/pkg/errors"
	httputil "groupstay/pkg/http"
	"groupstay/pkg/logger"
	"groupstay/pkg/model"
)

type InventoryHandler struct {
	service service.InventoryService
	log     *logger.Logger
}

func NewInventoryHandler(service service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		log:     log,
	}
}

func (h *InventoryHandler) CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var scope model.Scope
	if !h.decode(w, r, "CreateEvent", &scope) {
		return
	}

	created, err := h.service.CreateEvent(r.Context(), &scope)
	if err != nil {
		h.fail(w, "CreateEvent", err)
		return
	}
	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateEvent", "operation", "WriteCreated", "error", err)
	}
}

func (h *InventoryHandler) ListEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.fail(w, "ListEvents", err)
		return
	}
	if err := httputil.WriteList(w, events, len(events)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListEvents", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := h.service.GetEvent(r.Context(), ps.ByName("eventId"))
	if err != nil {
		h.fail(w, "GetEvent", err)
		return
	}
	h.ok(w, "GetEvent", event)
}

func (h *InventoryHandler) DeleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteEvent(r.Context(), ps.ByName("eventId")); err != nil {
		h.fail(w, "DeleteEvent", err)
		return
	}
	if err := httputil.WriteMessage(w, "Event deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "DeleteEvent", "operation", "WriteMessage", "error", err)
	}
}

func (h *InventoryHandler) CreatePool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in model.PoolInput
	if !h.decode(w, r, "CreatePool", &in) {
		return
	}

	pool, err := h.service.CreatePool(r.Context(), ps.ByName("eventId"), &in)
	if err != nil {
		h.fail(w, "CreatePool", err)
		return
	}
	if err := httputil.WriteCreated(w, pool); err != nil {
		h.log.Error("failed to write created response", "handler", "CreatePool", "operation", "WriteCreated", "error", err)
	}
}

// ListPools accepts ?kind=rooms and ?available=true.
func (h *InventoryHandler) ListPools(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	onlyAvailable, err := httputil.ExtractBool(r, "available")
	if err != nil {
		h.fail(w, "ListPools", err)
		return
	}

	pools, err := h.service.ListPools(r.Context(), ps.ByName("eventId"), r.URL.Query().Get("kind"), onlyAvailable)
	if err != nil {
		h.fail(w, "ListPools", err)
		return
	}
	if err := httputil.WriteList(w, pools, len(pools)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListPools", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) GetPool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pool, err := h.service.GetPool(r.Context(), ps.ByName("eventId"), ps.ByName("poolId"))
	if err != nil {
		h.fail(w, "GetPool", err)
		return
	}
	h.ok(w, "GetPool", pool)
}

func (h *InventoryHandler) DeletePool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeletePool(r.Context(), ps.ByName("eventId"), ps.ByName("poolId")); err != nil {
		h.fail(w, "DeletePool", err)
		return
	}
	if err := httputil.WriteMessage(w, "Pool deleted successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "DeletePool", "operation", "WriteMessage", "error", err)
	}
}

func (h *InventoryHandler) Allocate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in model.AllocationInput
	if !h.decode(w, r, "Allocate", &in) {
		return
	}

	result, err := h.service.ApplyDelta(r.Context(), ps.ByName("eventId"), ps.ByName("poolId"), &in)
	if err != nil {
		h.fail(w, "Allocate", err)
		return
	}
	h.ok(w, "Allocate", result)
}

func (h *InventoryHandler) AvailabilityAlerts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	alerts, err := h.service.AvailabilityAlerts(r.Context(), ps.ByName("eventId"))
	if err != nil {
		h.fail(w, "AvailabilityAlerts", err)
		return
	}
	if err := httputil.WriteList(w, alerts, len(alerts)); err != nil {
		h.log.Error("failed to write list response", "handler", "AvailabilityAlerts", "operation", "WriteList", "error", err)
	}
}

func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	summary, err := h.service.Summary(r.Context(), ps.ByName("eventId"))
	if err != nil {
		h.fail(w, "Summary", err)
		return
	}
	h.ok(w, "Summary", summary)
}

func (h *InventoryHandler) Occupancy(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rates, err := h.service.Occupancy(r.Context(), ps.ByName("eventId"))
	if err != nil {
		h.fail(w, "Occupancy", err)
		return
	}
	h.ok(w, "Occupancy", rates)
}

func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filename, body, err := h.service.Export(r.Context(), ps.ByName("eventId"))
	if err != nil {
		h.fail(w, "Export", err)
		return
	}
	if err := httputil.WriteAttachment(w, "text/csv; charset=utf-8", filename, body); err != nil {
		h.log.Error("failed to write attachment", "handler", "Export", "operation", "WriteAttachment", "error", err)
	}
}

// Import takes a report produced by Export as the raw request body.
func (h *InventoryHandler) Import(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pools, err := h.service.ImportPools(r.Context(), ps.ByName("eventId"), r.Body)
	if err != nil {
		h.fail(w, "Import", err)
		return
	}
	count := len(pools)
	if err := httputil.WriteEnvelope(w, http.StatusCreated, httputil.Envelope{Data: pools, Count: &count}); err != nil {
		h.log.Error("failed to write envelope", "handler", "Import", "operation", "WriteEnvelope", "error", err)
	}
}

func (h *InventoryHandler) decode(w http.ResponseWriter, r *http.Request, handler string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debug("invalid request body", "handler", handler, "error", err)
		h.fail(w, handler, apperrors.InvalidInput("Invalid request body"))
		return false
	}
	return true
}

func (h *InventoryHandler) ok(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InventoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/events", h.CreateEvent)
	router.GET("/api/events", h.ListEvents)
	router.GET("/api/events/:eventId", h.GetEvent)
	router.DELETE("/api/events/:eventId", h.DeleteEvent)

	router.POST("/api/events/:eventId/pools", h.CreatePool)
	router.GET("/api/events/:eventId/pools", h.ListPools)
	router.GET("/api/events/:eventId/pools/:poolId", h.GetPool)
	router.DELETE("/api/events/:eventId/pools/:poolId", h.DeletePool)
	router.POST("/api/events/:eventId/pools/:poolId/allocations", h.Allocate)

	router.GET("/api/events/:eventId/summary", h.Summary)
	router.GET("/api/events/:eventId/occupancy", h.Occupancy)
	router.GET("/api/events/:eventId/availability-alerts", h.AvailabilityAlerts)
	router.GET("/api/events/:eventId/export", h.Export)
	router.POST("/api/events/:eventId/import", h.Import)
}
