package memory

import (
	"context"
	"sync"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
)

// MOTDRepository 内存公告存储
type MOTDRepository struct {
	mu   sync.RWMutex
	motd *entity.MOTD
}

// NewMOTDRepository seed 为 nil 时初始为空
func NewMOTDRepository(seed *entity.MOTD) *MOTDRepository {
	return &MOTDRepository{motd: seed}
}

var _ repository.MOTDRepository = (*MOTDRepository)(nil)

func (r *MOTDRepository) Get(_ context.Context) (*entity.MOTD, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.motd == nil {
		return nil, repository.ErrNotFound
	}
	out := *r.motd
	return &out, nil
}

func (r *MOTDRepository) Save(_ context.Context, motd *entity.MOTD) error {
	if motd == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *motd
	r.motd = &cp
	return nil
}
