package repository

import (
	"context"

	"fairybook-api/internal/domain/entity"
)

// MOTDRepository 公告存储，只保存当前一条
type MOTDRepository interface {
	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context) (*entity.MOTD, error)
	Save(ctx context.Context, motd *entity.MOTD) error
}
