package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"fairybook-api/internal/interfaces/http/dto"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/logger"
	"fairybook-api/pkg/tracer"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				tracer.RecordError(trace.SpanFromContext(c.Request.Context()), err)
				logger.Error(c.Request.Context(), "panic recovered", err,
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				dto.Error(c, http.StatusInternalServerError, string(apperrors.CodeInternalError), "internal server error")
			}
		}()

		c.Next()
	}
}
