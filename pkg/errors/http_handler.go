package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Classify maps any error onto the AppError that is sent to the client.
func Classify(err error) *AppError {
	if IsAppError(err) {
		return AsAppError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout("Request timed out")
	}
	return AsAppError(err)
}

// WriteError writes the error envelope. Internal errors always carry the
// generic message so causes stay in the logs.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := Classify(err)
	response := appErr.Response()
	if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Code == CodeInternal {
		response.Error = genericInternalMessage
		response.Details = nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	return json.NewEncoder(w).Encode(response)
}
