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

// motdRowID 公告表只保留一行
const motdRowID = 1

// MOTDRepository 公告仓储
type MOTDRepository struct {
	client *Client
}

func NewMOTDRepository(client *Client) *MOTDRepository {
	return &MOTDRepository{client: client}
}

var _ repository.MOTDRepository = (*MOTDRepository)(nil)

func (r *MOTDRepository) Get(ctx context.Context) (*entity.MOTD, error) {
	ctx, span := tracer.Start(ctx, "postgres.MOTDRepository.Get")
	defer span.End()

	var motd entity.MOTD
	if err := getDB(ctx, r.client.db).First(&motd, "id = ?", motdRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to get motd: %w", err)
	}
	return &motd, nil
}

// Save 覆盖写入
func (r *MOTDRepository) Save(ctx context.Context, motd *entity.MOTD) error {
	if motd == nil {
		return nil
	}
	ctx, span := tracer.Start(ctx, "postgres.MOTDRepository.Save")
	defer span.End()

	row := *motd
	row.ID = motdRowID
	err := getDB(ctx, r.client.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"message", "is_active", "updated_at", "updated_by"}),
		}).
		Create(&row).Error
	if err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("failed to save motd: %w", err)
	}
	return nil
}
