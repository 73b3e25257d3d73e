package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fairybook-api/internal/config"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/interfaces/http/dto"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/logger"
	"fairybook-api/pkg/metrics"
)

// RateLimiter 限流器接口，Redis 与内存实现均满足
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// KeyFunc 由主体与路由构造限流键
type KeyFunc func(subject, endpoint string) string

// RateLimit 按用户（匿名时按客户端 IP）与路由限流
func RateLimit(cfg config.RateLimitConfig, limiter RateLimiter, key KeyFunc) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil || cfg.Limit <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	if key == nil {
		key = func(subject, endpoint string) string {
			return "ratelimit:" + subject + ":" + endpoint
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		subject := service.SessionFromContext(ctx).UID()
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		allowed, err := limiter.Allow(ctx, key(subject, endpoint), cfg.Limit, window)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(ctx, "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(endpoint).Inc()
			dto.Error(c, http.StatusTooManyRequests, string(apperrors.CodeTooManyRequests), "rate limit exceeded")
			return
		}

		c.Next()
	}
}
