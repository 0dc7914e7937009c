package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmhernandez2525/learning-hall/internal/platform/ctxutil"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

// RequestLogger writes one line per request. Builder session routes also carry the session id
// so a save failure can be followed across requests.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		fields := append([]interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if strings.HasPrefix(route, "/api/builder/sessions/") {
			fields = append(fields, "builder_session_id", c.Param("id"))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case route == "/healthcheck" || route == "/readyz":
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
