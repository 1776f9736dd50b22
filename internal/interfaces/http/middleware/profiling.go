package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
)

// Profiling attaches route and method labels to the request context so
// Pyroscope samples can be filtered per endpoint. Requests whose path starts
// with one of skipPrefixes pass through unlabeled.
func Profiling(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), telemetry.HTTPRequestLabels(c.Request.Method, route), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
