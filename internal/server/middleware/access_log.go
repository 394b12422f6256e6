package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/looplj/crmhub/internal/log"
)

// AccessLog logs one line per request. Errors recorded on the gin context
// are included so policy denials and guard violations show up with the
// request that triggered them.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()

		fields := []log.Field{
			log.Int("status", status),
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.Duration("latency", time.Since(start)),
			log.String("client_ip", c.ClientIP()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, log.Strings("errors", lo.Map(c.Errors, func(err *gin.Error, _ int) string {
				return err.Error()
			})))
		}

		switch {
		case status >= 500:
			log.Error(ctx, "request failed", fields...)
		case status >= 400:
			log.Warn(ctx, "request rejected", fields...)
		default:
			log.Info(ctx, "request completed", fields...)
		}
	}
}
