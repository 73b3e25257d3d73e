package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter 进程内限流，每个键一个令牌桶，闲置的键随缓存过期回收
type RateLimiter struct {
	mu       sync.Mutex
	limiters *gocache.Cache
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: gocache.New(10*time.Minute, 10*time.Minute)}
}

// Allow 窗口内最多 limit 次，令牌按 window/limit 匀速补充
func (l *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	l.mu.Lock()
	v, ok := l.limiters.Get(key)
	if !ok {
		v = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
	}
	l.limiters.Set(key, v, 2*window)
	l.mu.Unlock()

	return v.(*rate.Limiter).Allow(), nil
}
