package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/observability"
)

// RequestLogger returns middleware that logs every request with method,
// path, status code, and duration, and records it in metrics when they are
// configured. Health-check paths are not logged.
func RequestLogger(log *logger.Logger, metrics *observability.LaunchMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			metrics.RecordRequest(r.Context(), r.Method, r.URL.Path, sw.status, duration)
			if isHealthEndpoint(r.URL.Path) {
				return
			}

			fields := map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": sw.status,
			}
			logByStatus(log.WithContext(r.Context()), logger.MergeWithDuration(fields, duration), sw.status)
		})
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/version":
		return true
	}
	return false
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
