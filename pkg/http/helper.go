package http

import (
	"net/http"
	"strconv"

	"groupstay/pkg/config"
	apperrors "groupstay/pkg/errors"
)

// ExtractLimit reads the "limit" query parameter, falling back to fallback
// when it is absent and capping it at config.MaxAlertListLimit.
func ExtractLimit(r *http.Request, fallback int) (int, error) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}
	return config.NormalizeAlertLimit(limit, fallback), nil
}

// ExtractBool reads a boolean query parameter. Missing means false.
func ExtractBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}
