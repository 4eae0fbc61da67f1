package hotels

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "groupstay/pkg/errors"
	httputil "groupstay/pkg/http"
	"groupstay/pkg/logger"
)

const msgProviderFailed = "TBO API failed"

type Searcher interface {
	Search(ctx context.Context, body []byte) ([]byte, error)
}

// Handler proxies hotel searches to the provider. The provider's response is
// relayed as is; any failure collapses into a single 500.
type Handler struct {
	client  Searcher
	log     *logger.Logger
	maxBody int64
}

func NewHandler(client Searcher, log *logger.Logger, maxBody int64) *Handler {
	return &Handler{
		client:  client,
		log:     log,
		maxBody: maxBody,
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		h.fail(w, apperrors.InvalidInput("Invalid request body"))
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		h.fail(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.client.Search(r.Context(), body)
	if err != nil {
		logger.FromContext(r.Context(), h.log).Error("Hotel search failed", "handler", "Search", "error", err)
		h.fail(w, apperrors.Upstream(msgProviderFailed, err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp); err != nil {
		h.log.Error("failed to write proxy response", "handler", "Search", "operation", "Write", "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/hotels", h.Search)
}
