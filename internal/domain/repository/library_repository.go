package repository

import (
	"context"

	"fairybook-api/internal/domain/entity"
)

// LibraryRepository 作品库存储
type LibraryRepository interface {
	// List 按创建时间倒序；authorUID 为空时返回全部
	List(ctx context.Context, authorUID string, limit int) ([]*entity.LibraryEntry, error)
	Create(ctx context.Context, entry *entity.LibraryEntry) error
}
