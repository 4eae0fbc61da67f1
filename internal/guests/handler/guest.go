package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"groupstay/internal/guests/service"
	apperrors "groupstay/pkg/errors"
	httputil "groupstay/pkg/http"
	"groupstay/pkg/logger"
	"groupstay/pkg/model"
)

type GuestHandler struct {
	service service.GuestService
	log     *logger.Logger
}

func NewGuestHandler(service service.GuestService, log *logger.Logger) *GuestHandler {
	return &GuestHandler{
		service: service,
		log:     log,
	}
}

func (h *GuestHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	guests, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "List", err)
		return
	}
	if err := httputil.WriteList(w, guests, len(guests)); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *GuestHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := guestID(ps)
	if !ok {
		h.fail(w, "Get", apperrors.NotFound("Guest"))
		return
	}

	guest, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "Get", err)
		return
	}
	if err := httputil.WriteSuccess(w, guest); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

// Save creates or updates a guest. Both outcomes answer 200 and carry the
// alert that was raised.
func (h *GuestHandler) Save(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var guest model.Guest
	if err := json.NewDecoder(r.Body).Decode(&guest); err != nil {
		h.log.Debug("invalid request body", "handler", "Save", "error", err)
		h.fail(w, "Save", apperrors.InvalidInput("Invalid request body"))
		return
	}

	saved, created, alert, err := h.service.Save(r.Context(), &guest)
	if err != nil {
		h.fail(w, "Save", err)
		return
	}

	message := "Guest updated successfully"
	if created {
		message = "Guest added successfully"
	}
	env := httputil.Envelope{Message: message, Data: saved, Alert: alert}
	if err := httputil.WriteEnvelope(w, http.StatusOK, env); err != nil {
		h.log.Error("failed to write envelope", "handler", "Save", "operation", "WriteEnvelope", "error", err)
	}
}

func (h *GuestHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := guestID(ps)
	if !ok {
		h.fail(w, "Delete", apperrors.NotFound("Guest"))
		return
	}

	alert, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, "Delete", err)
		return
	}
	env := httputil.Envelope{Message: "Guest deleted successfully", Alert: alert}
	if err := httputil.WriteEnvelope(w, http.StatusOK, env); err != nil {
		h.log.Error("failed to write envelope", "handler", "Delete", "operation", "WriteEnvelope", "error", err)
	}
}

func (h *GuestHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *GuestHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/guests", h.List)
	router.POST("/api/guests", h.Save)
	router.GET("/api/guests/:id", h.Get)
	router.DELETE("/api/guests/:id", h.Delete)
}

// guestID parses the :id segment. Anything that is not a positive integer
// cannot name a stored guest.
func guestID(ps httprouter.Params) (int64, bool) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
