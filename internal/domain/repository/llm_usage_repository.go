package repository

import (
	"context"

	"fairybook-api/internal/domain/entity"
)

// LLMUsageEventRepository 模型调用流水，只追加
type LLMUsageEventRepository interface {
	Create(ctx context.Context, event *entity.LLMUsageEvent) error
}
