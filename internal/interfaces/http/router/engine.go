package router

import (
	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/infrastructure/logger"
	"github.com/printbroker/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineOptions configure the gin engine and its middleware stack
type EngineOptions struct {
	Logger *zap.Logger
	// ServiceName enables otelgin tracing when set
	ServiceName    string
	Meter          metric.Meter
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	// ProfilingLabels tags each request with Pyroscope route labels
	ProfilingLabels bool
}

// NewEngine builds a gin engine with the middleware stack applied in order:
// request id, logging and recovery, tracing, metrics, profiling labels,
// security headers, CORS and the body limit.
func NewEngine(opts EngineOptions) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			log.Warn("failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(opts.ServiceName))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(opts.Meter, log))
	if opts.ProfilingLabels {
		engine.Use(middleware.Profiling("/health"))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(opts.CORS))
	engine.Use(middleware.BodyLimit(opts.MaxBodySize))

	return engine
}
