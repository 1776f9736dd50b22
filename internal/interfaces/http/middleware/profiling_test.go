package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestProfiling(t *testing.T) {
	gin.SetMode(gin.TestMode)

	labelsOf := func(path string) map[string]string {
		r := gin.New()
		r.Use(Profiling("/health"))
		got := map[string]string{}
		handler := func(c *gin.Context) {
			ctx := c.Request.Context()
			for _, key := range []string{telemetry.ProfilingLabelRoute, telemetry.ProfilingLabelMethod, telemetry.ProfilingLabelController} {
				if v, ok := pprof.Label(ctx, key); ok {
					got[key] = v
				}
			}
			c.Status(http.StatusOK)
		}
		r.GET("/api/v1/jobs/:id", handler)
		r.GET("/health", handler)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		return got
	}

	t.Run("labels matched routes", func(t *testing.T) {
		got := labelsOf("/api/v1/jobs/6a1f0c1e-0000-0000-0000-000000000001")
		assert.Equal(t, "/api/v1/jobs/:id", got[telemetry.ProfilingLabelRoute])
		assert.Equal(t, http.MethodGet, got[telemetry.ProfilingLabelMethod])
		assert.Equal(t, "jobs", got[telemetry.ProfilingLabelController])
	})

	t.Run("skips configured prefixes", func(t *testing.T) {
		assert.Empty(t, labelsOf("/health"))
	})
}
