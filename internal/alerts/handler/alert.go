package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"groupstay/internal/alerts/service"
	httputil "groupstay/pkg/http"
	"groupstay/pkg/logger"
)

// AlertHandler serves the alert log. The /api/alerts routes act on the
// default event; the nested routes name the event explicitly.
type AlertHandler struct {
	service      service.AlertService
	log          *logger.Logger
	defaultScope string
	defaultLimit int
}

func NewAlertHandler(service service.AlertService, log *logger.Logger, defaultScope string, defaultLimit int) *AlertHandler {
	return &AlertHandler{
		service:      service,
		log:          log,
		defaultScope: defaultScope,
		defaultLimit: defaultLimit,
	}
}

func (h *AlertHandler) scope(ps httprouter.Params) string {
	if id := ps.ByName("eventId"); id != "" {
		return id
	}
	return h.defaultScope
}

// List accepts ?limit=N.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, err := httputil.ExtractLimit(r, h.defaultLimit)
	if err != nil {
		h.fail(w, "List", err)
		return
	}

	alerts, err := h.service.List(r.Context(), h.scope(ps), limit)
	if err != nil {
		h.fail(w, "List", err)
		return
	}
	if err := httputil.WriteList(w, alerts, len(alerts)); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Dismiss(r.Context(), h.scope(ps), ps.ByName("alertId")); err != nil {
		h.fail(w, "Dismiss", err)
		return
	}
	h.message(w, "Dismiss", "Alert dismissed successfully")
}

func (h *AlertHandler) Clear(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, err := h.service.Clear(r.Context(), h.scope(ps)); err != nil {
		h.fail(w, "Clear", err)
		return
	}
	h.message(w, "Clear", "All alerts cleared")
}

func (h *AlertHandler) message(w http.ResponseWriter, handler, msg string) {
	if err := httputil.WriteMessage(w, msg); err != nil {
		h.log.Error("failed to write message response", "handler", handler, "operation", "WriteMessage", "error", err)
	}
}

func (h *AlertHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AlertHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/alerts", h.List)
	router.DELETE("/api/alerts", h.Clear)
	router.DELETE("/api/alerts/:alertId", h.Dismiss)

	router.GET("/api/events/:eventId/alerts", h.List)
	router.DELETE("/api/events/:eventId/alerts", h.Clear)
	router.DELETE("/api/events/:eventId/alerts/:alertId", h.Dismiss)
}
