package repository

import (
	"context"

	"fairybook-api/internal/domain/entity"
)

// TokenMutation 在原子更新中计算新状态；current 为 nil 表示记录不存在。
// 返回 nil 状态表示不写入，返回错误则放弃本次更新。
type TokenMutation func(current *entity.GenerationTokenStatus) (*entity.GenerationTokenStatus, error)

// TokenRepository 生成额度存储
type TokenRepository interface {
	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context, uid string) (*entity.GenerationTokenStatus, error)
	// Update 对单个用户的额度做读-改-写，同一用户的并发更新串行生效
	Update(ctx context.Context, uid string, mutate TokenMutation) (*entity.GenerationTokenStatus, error)
}
