package memory

import (
	"context"
	"sync"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
)

// TokenRepository 内存额度存储，互斥锁保证读-改-写原子
type TokenRepository struct {
	mu     sync.Mutex
	status map[string]*entity.GenerationTokenStatus
}

func NewTokenRepository(seed ...*entity.GenerationTokenStatus) *TokenRepository {
	r := &TokenRepository{status: make(map[string]*entity.GenerationTokenStatus)}
	for _, s := range seed {
		if s != nil && s.UID != "" {
			r.status[s.UID] = s.Clone()
		}
	}
	return r
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func (r *TokenRepository) Get(_ context.Context, uid string) (*entity.GenerationTokenStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.status[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *TokenRepository) Update(ctx context.Context, uid string, mutate repository.TokenMutation) (*entity.GenerationTokenStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.status[uid].Clone()
	next, err := mutate(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return current, nil
	}
	next = next.Clone()
	next.UID = uid
	r.status[uid] = next
	return next.Clone(), nil
}
