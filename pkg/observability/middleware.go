package observability

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// MetricsMiddleware records adminguard_requests_total (method and status
// class) and adminguard_request_duration_seconds (method) for every request,
// and logs its completion. Requests to quietPaths, such as health probes,
// are logged at DEBUG instead of INFO.
func MetricsMiddleware(quietPaths ...string) func(http.Handler) http.Handler {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := statusOf(ww)
			elapsed := time.Since(start)
			RequestsTotal.WithLabelValues(r.Method, statusClass(status)).Inc()
			RequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())

			level := slog.LevelInfo
			if quiet[r.URL.Path] {
				level = slog.LevelDebug
			}
			slog.Log(r.Context(), level, "request completed",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed.String(),
			)
		})
	}
}

// statusOf treats a handler that never wrote a header as 200.
func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

// statusClass returns the label for a status code, like "2xx" or "4xx".
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
