package handler

import (
	"encoding/json"
	"net/http"
)

// BreakerState reports whether calls to the processing service are refused.
type BreakerState interface {
	Open() bool
}

// Health returns a health check handler. The service is degraded while the
// processor circuit breaker is open; a nil state is always healthy.
func Health(state BreakerState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		if state != nil && state.Open() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
