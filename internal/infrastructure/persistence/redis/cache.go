package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"fairybook-api/pkg/tracer"
)

// Cache 读穿缓存
type Cache struct {
	client *Client
	prefix string
	group  singleflight.Group
}

// NewCache 创建缓存服务，键位于 fairybook:cache: 下
func NewCache(client *Client) *Cache {
	return &Cache{client: client, prefix: redisKey("cache") + ":"}
}

// GetOrLoad 未命中时调用 loader，并发未命中合并为一次加载
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	key = c.prefix + key
	ctx, span := tracer.Start(ctx, "redis.cache.GetOrLoad",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Bytes()
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	}
	if err != redis.Nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// 其他请求可能已填充
		if val, err := c.client.rdb.Get(ctx, key).Bytes(); err == nil {
			return val, nil
		}

		data, err := loader()
		if err != nil {
			return nil, err
		}
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		if err := c.client.rdb.Set(ctx, key, bytes, ttl).Err(); err != nil {
			tracer.RecordError(span, err)
		}
		return bytes, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	return result.([]byte), nil
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	ctx, span := tracer.Start(ctx, "redis.cache.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))))
	defer span.End()

	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, c.prefix+k)
	}
	return c.client.rdb.Del(ctx, prefixed...).Err()
}
