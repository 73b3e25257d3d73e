package postgres

import (
	"context"
	"fmt"
	"strings"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	"fairybook-api/pkg/tracer"
)

// LibraryRepository 作品库仓储
type LibraryRepository struct {
	client *Client
}

func NewLibraryRepository(client *Client) *LibraryRepository {
	return &LibraryRepository{client: client}
}

var _ repository.LibraryRepository = (*LibraryRepository)(nil)

func (r *LibraryRepository) List(ctx context.Context, authorUID string, limit int) ([]*entity.LibraryEntry, error) {
	ctx, span := tracer.Start(ctx, "postgres.LibraryRepository.List")
	defer span.End()

	query := getDB(ctx, r.client.db).Model(&entity.LibraryEntry{})
	if uid := strings.TrimSpace(authorUID); uid != "" {
		query = query.Where("author_uid = ?", uid)
	}

	var entries []*entity.LibraryEntry
	if err := query.Order("created_at DESC").Limit(repository.NormalizeLimit(limit)).Find(&entries).Error; err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list library entries: %w", err)
	}
	return entries, nil
}

func (r *LibraryRepository) Create(ctx context.Context, entry *entity.LibraryEntry) error {
	ctx, span := tracer.Start(ctx, "postgres.LibraryRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(entry).Error; err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("failed to create library entry: %w", err)
	}
	return nil
}
