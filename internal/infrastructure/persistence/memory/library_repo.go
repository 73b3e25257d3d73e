package memory

import (
	"context"
	"slices"
	"sync"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
)

// LibraryRepository 内存作品库
type LibraryRepository struct {
	mu      sync.RWMutex
	entries []*entity.LibraryEntry
}

func NewLibraryRepository(seed []*entity.LibraryEntry) *LibraryRepository {
	return &LibraryRepository{entries: slices.Clone(seed)}
}

var _ repository.LibraryRepository = (*LibraryRepository)(nil)

func (r *LibraryRepository) List(_ context.Context, authorUID string, limit int) ([]*entity.LibraryEntry, error) {
	limit = repository.NormalizeLimit(limit)

	r.mu.RLock()
	out := make([]*entity.LibraryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if authorUID != "" && (e.AuthorUID == nil || *e.AuthorUID != authorUID) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b *entity.LibraryEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *LibraryRepository) Create(_ context.Context, entry *entity.LibraryEntry) error {
	if entry == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}
