package middleware

import (
	"net/http"
	"time"
)

// RequestObserver receives one observation per request. pattern is the
// ServeMux pattern that matched, or "" when nothing did.
type RequestObserver interface {
	ObserveRequest(method, pattern string, status int, d time.Duration)
}

// Metrics reports every request to obs. It must wrap the ServeMux so the
// matched pattern is set on the request by the time next returns.
func Metrics(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			obs.ObserveRequest(r.Method, r.Pattern, rec.status, time.Since(start))
		})
	}
}
