package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"fairybook-api/pkg/logger"
	"fairybook-api/pkg/tracer"
)

// Trace OpenTelemetry 追踪中间件
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 把 trace_id/span_id 写入日志上下文与响应头
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID, spanID, ok := tracer.IDs(c.Request.Context()); ok {
			c.Set("trace_id", traceID)
			c.Set("span_id", spanID)

			ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
			ctx = logger.WithContext(ctx, logger.SpanIDKey, spanID)
			c.Request = c.Request.WithContext(ctx)

			c.Header("X-Trace-ID", traceID)
		}

		c.Next()
	}
}
