package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fairybook-api/pkg/metrics"
)

// 探活与抓取请求不计入指标
var unmeteredPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
	"/live":    {},
}

// Metrics Prometheus 指标采集中间件，path 取路由模板
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if _, skip := unmeteredPaths[path]; skip {
			c.Next()
			return
		}
		if path == "" {
			path = "unknown"
		}
		start := time.Now()
		method := c.Request.Method

		if reqSize := float64(c.Request.ContentLength); reqSize > 0 {
			metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(reqSize)
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if respSize := float64(c.Writer.Size()); respSize > 0 {
			metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(respSize)
		}
	}
}
