// Package motd 提供首页公告的读取与发布
package motd

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	apperrors "fairybook-api/pkg/errors"
)

const (
	cacheKey   = "motd:current"
	defaultTTL = 30 * time.Second
)

// Cache 读穿缓存，loader 的结果按 JSON 保存
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

// Service 公告服务
type Service struct {
	repo  repository.MOTDRepository
	cache Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewService(repo repository.MOTDRepository, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, now: time.Now}
}

// Current 当前公告，不存在时返回 nil
func (s *Service) Current(ctx context.Context) (*entity.MOTD, error) {
	if s.cache == nil {
		return s.load(ctx)
	}
	raw, err := s.cache.GetOrLoad(ctx, cacheKey, s.ttl, func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	var m *entity.MOTD
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "decode cached motd")
	}
	return m, nil
}

func (s *Service) load(ctx context.Context) (*entity.MOTD, error) {
	m, err := s.repo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "load motd")
	}
	return m, nil
}

// Publish 覆盖当前公告并清除缓存
func (s *Service) Publish(ctx context.Context, message string, active bool, updatedBy string) (*entity.MOTD, error) {
	m := &entity.MOTD{
		Message:   strings.TrimSpace(message),
		IsActive:  active,
		UpdatedAt: s.now().UTC(),
	}
	if by := strings.TrimSpace(updatedBy); by != "" {
		m.UpdatedBy = &by
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "save motd")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "invalidate motd cache")
		}
	}
	return m, nil
}
