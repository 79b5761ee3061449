package server

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// withRequestLog notifies obs before anything else happens, then tags the
// request with an id and logs how it was handled.
func withRequestLog(obs RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if obs != nil {
			obs.Observe(r.Method, r.URL.RequestURI())
		}

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		m := httpsnoop.CaptureMetrics(next, w, r)
		slog.Info("handled",
			"method", r.Method,
			"url", r.URL.String(),
			"status", m.Code,
			"duration", m.Duration,
			"request_id", id,
		)
	})
}
