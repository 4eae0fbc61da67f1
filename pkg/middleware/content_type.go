package middleware

import (
	"mime"
	"net/http"
	"slices"
	"strings"

	apperrors "groupstay/pkg/errors"
	"groupstay/pkg/logger"
)

// ContentTypeValidation rejects bodies of write requests whose media type is
// not in allowed. application/json is always accepted.
func ContentTypeValidation(log *logger.Logger, allowed ...string) func(http.Handler) http.Handler {
	accepted := append([]string{"application/json"}, allowed...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				contentType := extractContentType(r.Header.Get("Content-Type"))
				if !slices.Contains(accepted, contentType) {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestIDFromContext(r.Context()),
						"content_type", contentType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					_ = apperrors.WriteError(w, apperrors.New(
						apperrors.CodeBadRequest,
						"Content-Type must be one of: "+strings.Join(accepted, ", "),
						http.StatusUnsupportedMediaType,
					))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requiresContentType is true for write methods that carry a body. DELETE
// requests have no body in this API.
func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.TrimSpace(strings.Split(header, ";")[0])
	}
	return mediaType
}
