package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/looplj/crmhub/internal/contexts"
	"github.com/looplj/crmhub/internal/tracing"
)

// getTraceIDFromHeader extracts the trace id from the configured headers.
func getTraceIDFromHeader(c *gin.Context, config tracing.Config) string {
	traceID := c.GetHeader(config.HeaderName())
	if traceID != "" {
		return traceID
	}

	for _, header := range config.ExtraTraceHeaders {
		traceID = c.GetHeader(header)
		if traceID != "" {
			return traceID
		}
	}

	return ""
}

// WithLoggingTracing attaches trace id, request id and request origin
// metadata to the request context. The request id ends up on every audit
// entry written during the request.
func WithLoggingTracing(config tracing.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		traceID := getTraceIDFromHeader(c, config)
		if traceID == "" {
			traceID = tracing.GenerateTraceID()
		}

		ctx = tracing.WithTraceID(ctx, traceID)
		ctx = tracing.WithRequestID(ctx, tracing.GenerateRequestID())
		ctx = contexts.WithRequestMeta(ctx, c.ClientIP(), c.Request.UserAgent())

		c.Header(config.HeaderName(), traceID)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
