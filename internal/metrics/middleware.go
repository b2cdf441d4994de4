package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// recordRequestDuration is swappable in tests.
var recordRequestDuration = func(ctx context.Context, seconds float64, attrs ...attribute.KeyValue) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, seconds, attrs...)
	}
}

// RequestMetrics records per-request latency into RequestDuration,
// labelled by method, route template and response status.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recordRequestDuration(c.Request.Context(), time.Since(start).Seconds(),
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(c.Writer.Status())),
		)
	}
}
