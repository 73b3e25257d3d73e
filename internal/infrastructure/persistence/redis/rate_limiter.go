package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"fairybook-api/pkg/tracer"
)

// RateLimiter 基于 ZSET 的滑动窗口限流器
type RateLimiter struct {
	client *Client
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow 滑动窗口内计数未达 limit 时放行并记一次，limit 或 window 非正时总是放行
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.ratelimit.Allow")
	span.SetAttributes(
		attribute.String("ratelimit.key", key),
		attribute.Int("ratelimit.limit", limit),
		attribute.Int64("ratelimit.window_ms", window.Milliseconds()),
	)
	defer span.End()

	if limit <= 0 || window <= 0 {
		return true, nil
	}

	now := time.Now().UnixMilli()
	windowStart := now - window.Milliseconds()

	pipe := l.client.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		tracer.RecordError(span, err)
		return false, err
	}

	count := countCmd.Val()
	span.SetAttributes(attribute.Int64("ratelimit.current_count", count))
	if count >= int64(limit) {
		span.SetAttributes(attribute.Bool("ratelimit.allowed", false))
		return false, nil
	}

	// 同一毫秒内的请求也需要不同的成员
	pipe = l.client.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: uuid.NewString()})
	pipe.Expire(ctx, key, window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		tracer.RecordError(span, err)
		return false, err
	}

	span.SetAttributes(attribute.Bool("ratelimit.allowed", true))
	return true, nil
}

// Reset 重置限流计数
func (l *RateLimiter) Reset(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "redis.ratelimit.Reset")
	span.SetAttributes(attribute.String("ratelimit.key", key))
	defer span.End()

	return l.client.rdb.Del(ctx, key).Err()
}

// BuildRateLimitKey 构建限流键，subject 为用户 ID 或客户端 IP
func BuildRateLimitKey(subject, endpoint string) string {
	return redisKey("ratelimit", subject, endpoint)
}
