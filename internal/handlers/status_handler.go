package handlers

import (
	"context"
	"net/http"

	"github.com/iyunix/go-kbshell/internal/backend"
)

// HealthChecker probes the knowledge-base backend.
type HealthChecker interface {
	Health(ctx context.Context) (backend.Status, error)
}

// BackendHealth reports backend reachability; 503 when it is down.
func BackendHealth(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := checker.Health(r.Context())
		if err != nil {
			writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		status := http.StatusOK
		if !st.Healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, st)
	}
}
