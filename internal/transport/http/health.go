package http

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes a dependency the api cannot serve without.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// HandleHealth reports liveness. When check is set, a failing check turns
// the response into a 503.
func HandleHealth(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
