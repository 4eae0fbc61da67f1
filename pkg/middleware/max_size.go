package middleware

import (
	"net/http"

	apperrors "groupstay/pkg/errors"
)

// MaxRequestSize limits request bodies to limit bytes. Declared lengths
// above the limit are rejected up front; streamed bodies fail on read.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = apperrors.WriteError(w, apperrors.New(
					apperrors.CodeBadRequest,
					"Request body too large",
					http.StatusRequestEntityTooLarge,
				))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
