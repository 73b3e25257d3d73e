package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Cache 进程内缓存，接口与 Redis 缓存一致
type Cache struct {
	store *gocache.Cache
	group singleflight.Group
}

func NewCache(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// GetOrLoad 未命中时调用 loader 并缓存其 JSON 序列化结果，并发加载合并为一次
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	if v, ok := c.store.Get(key); ok {
		return v.([]byte), nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		data, err := loader()
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		c.store.Set(key, b, ttl)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Delete 删除缓存
func (c *Cache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.store.Delete(k)
	}
	return nil
}
