package memory

import (
	"context"
	"sync"
	"time"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
)

// LLMUsageEventRepository 内存调用流水，只保留最近 max 条
type LLMUsageEventRepository struct {
	mu     sync.Mutex
	max    int
	events []entity.LLMUsageEvent
}

func NewLLMUsageEventRepository(max int) *LLMUsageEventRepository {
	if max <= 0 {
		max = 1000
	}
	return &LLMUsageEventRepository{max: max}
}

var _ repository.LLMUsageEventRepository = (*LLMUsageEventRepository)(nil)

func (r *LLMUsageEventRepository) Create(_ context.Context, event *entity.LLMUsageEvent) error {
	if event == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *event
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.events = append(r.events, e)
	if len(r.events) > r.max {
		r.events = r.events[len(r.events)-r.max:]
	}
	return nil
}

// Events 返回快照
func (r *LLMUsageEventRepository) Events() []entity.LLMUsageEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.LLMUsageEvent, len(r.events))
	copy(out, r.events)
	return out
}
