package middleware

import (
	"net/http"
	"time"

	"groupstay/pkg/metrics"
)

func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapWriter(w)
			next.ServeHTTP(wrapped, r)
			m.ObserveHTTP(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
