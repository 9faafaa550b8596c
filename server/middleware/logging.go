package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/origon-labs/apiutils/logger"
	"github.com/origon-labs/apiutils/observability"
)

// RequestLogger returns middleware that logs every request with method,
// path, status, and duration, and records request metrics when a metric set
// is supplied. Health and metrics endpoints are silently skipped.
func RequestLogger(log *logger.Logger, metrics *observability.RequestMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isOperationalEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			metrics.RecordRequestStart(r.Context())
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)
			metrics.RecordRequestEnd(r.Context(), r.Method, r.URL.Path, sw.status, duration)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"duration_ms": duration.Milliseconds(),
			}
			if id := r.Header.Get("X-Request-Id"); id != "" {
				fields["request_id"] = id
			}
			if id := r.Header.Get(HeaderCorrelationID); id != "" {
				fields["correlation_id"] = id
			}

			logByStatus(log, fields, sw.status)
		})
	}
}

// GinRequestLogger returns a Gin middleware for request logging, for engines
// that do not apply RequestLogger at the server handler level.
func GinRequestLogger(metrics *observability.RequestMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isOperationalEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		metrics.RecordRequestStart(c.Request.Context())
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		metrics.RecordRequestEnd(c.Request.Context(), c.Request.Method, path, status, latency)

		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": latency.String(),
			"client":  c.ClientIP(),
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}

		logByStatus(nil, fields, status)
	}
}

// isOperationalEndpoint reports whether the path is a health or metrics
// probe that should not be logged per request.
func isOperationalEndpoint(path string) bool {
	switch path {
	case "/health", "/info", "/metrics":
		return true
	}
	return false
}

// logByStatus logs request fields at a level matching the HTTP status. A nil
// log falls back to the global logger.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	logErr := logger.Error
	logWarn := logger.Warn
	logInfo := logger.Info
	if log != nil {
		logErr = log.Error
		logWarn = log.Warn
		logInfo = log.Info
	}

	switch {
	case status >= 500:
		logErr("Request completed", fields)
	case status >= 400:
		logWarn("Request completed", fields)
	default:
		logInfo("Request completed", fields)
	}
}
