package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "groupstay/pkg/errors"
)

// Envelope is the success body shared by every JSON endpoint. Data is kept
// even when it is an empty list; the other fields are dropped when unset.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Alert   any    `json:"alert,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) error {
	return apperrors.WriteError(w, err)
}

func WriteEnvelope(w http.ResponseWriter, statusCode int, env Envelope) error {
	env.Success = true
	return WriteJSON(w, statusCode, env)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteEnvelope(w, http.StatusOK, Envelope{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteEnvelope(w, http.StatusCreated, Envelope{Data: data})
}

func WriteList(w http.ResponseWriter, data any, count int) error {
	return WriteEnvelope(w, http.StatusOK, Envelope{Data: data, Count: &count})
}

func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteEnvelope(w, http.StatusOK, Envelope{Message: message})
}

// WriteAttachment sends body as a downloadable file.
func WriteAttachment(w http.ResponseWriter, contentType, filename, body string) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(body))
	return err
}
