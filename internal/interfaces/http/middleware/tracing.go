package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader returns the trace id of a traced request
const TraceIDHeader = "X-Trace-ID"

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// Tracing returns the otelgin server span middleware followed by one that
// tags the span with request_id and user_id once the handler chain has
// run. Disabled config returns no handlers.
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return []gin.HandlerFunc{otelgin.Middleware(cfg.ServiceName, opts...), enrichSpan}
}

func enrichSpan(c *gin.Context) {
	if traceID := telemetry.TraceID(c.Request.Context()); traceID != "" {
		c.Header(TraceIDHeader, traceID)
	}

	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if id := c.GetString(RequestIDKey); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if id := c.GetString(UserIDKey); id != "" {
		span.SetAttributes(attribute.String("user_id", id))
	}
	if status := c.Writer.Status(); status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
