package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"groupstay/internal/guests/service"
	httputil "groupstay/pkg/http"
	"groupstay/pkg/logger"
)

// ReportHandler serves the guest analytics and report endpoints. Their paths
// share the /api/guests/:id prefix, so they live on a router of their own.
type ReportHandler struct {
	service service.GuestService
	log     *logger.Logger
}

func NewReportHandler(service service.GuestService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

func (h *ReportHandler) Dietary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	summary, err := h.service.DietarySummary(r.Context())
	if err != nil {
		h.fail(w, "Dietary", err)
		return
	}
	h.ok(w, "Dietary", summary)
}

func (h *ReportHandler) SpecialNeeds(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	summary, err := h.service.SpecialNeedsSummary(r.Context())
	if err != nil {
		h.fail(w, "SpecialNeeds", err)
		return
	}
	h.ok(w, "SpecialNeeds", summary)
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		h.fail(w, "Summary", err)
		return
	}
	h.ok(w, "Summary", report)
}

func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filename, body, err := h.service.ExportCSV(r.Context())
	if err != nil {
		h.fail(w, "Export", err)
		return
	}
	if err := httputil.WriteAttachment(w, "text/csv; charset=utf-8", filename, body); err != nil {
		h.log.Error("failed to write attachment", "handler", "Export", "operation", "WriteAttachment", "error", err)
	}
}

func (h *ReportHandler) ok(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/guests/analytics/dietary", h.Dietary)
	router.GET("/api/guests/analytics/special-needs", h.SpecialNeeds)
	router.GET("/api/guests/report/summary", h.Summary)
	router.GET("/api/guests/report/export", h.Export)
}

func (h *ReportHandler) MountPoints() []string {
	return []string{"/api/guests/analytics/", "/api/guests/report/"}
}
