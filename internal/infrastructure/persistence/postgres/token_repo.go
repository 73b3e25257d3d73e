package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	"fairybook-api/pkg/tracer"
)

// TokenRepository 额度仓储，Update 在事务内对行加 FOR UPDATE 锁
type TokenRepository struct {
	client *Client
	tx     *TxManager
}

func NewTokenRepository(client *Client) *TokenRepository {
	return &TokenRepository{client: client, tx: NewTxManager(client)}
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func (r *TokenRepository) Get(ctx context.Context, uid string) (*entity.GenerationTokenStatus, error) {
	ctx, span := tracer.Start(ctx, "postgres.TokenRepository.Get")
	defer span.End()

	var st entity.GenerationTokenStatus
	if err := getDB(ctx, r.client.db).First(&st, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to get token status: %w", err)
	}
	return &st, nil
}

func (r *TokenRepository) Update(ctx context.Context, uid string, mutate repository.TokenMutation) (*entity.GenerationTokenStatus, error) {
	ctx, span := tracer.Start(ctx, "postgres.TokenRepository.Update")
	defer span.End()

	var result *entity.GenerationTokenStatus
	err := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, r.client.db)

		var current *entity.GenerationTokenStatus
		var row entity.GenerationTokenStatus
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "uid = ?", uid).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			current = &row
		}

		next, err := mutate(current.Clone())
		if err != nil {
			return err
		}
		if next == nil {
			result = current
			return nil
		}
		next = next.Clone()
		next.UID = uid
		// 行不存在时 Save 退化为插入
		if err := db.Save(next).Error; err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	return result, nil
}
