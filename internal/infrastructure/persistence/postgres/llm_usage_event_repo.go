package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	"fairybook-api/pkg/tracer"
)

// LLMUsageEventRepository 模型调用流水表 llm_usage_events
type LLMUsageEventRepository struct {
	client *Client
}

func NewLLMUsageEventRepository(client *Client) *LLMUsageEventRepository {
	return &LLMUsageEventRepository{client: client}
}

var _ repository.LLMUsageEventRepository = (*LLMUsageEventRepository)(nil)

// Create 追加一条流水，空事件忽略
func (r *LLMUsageEventRepository) Create(ctx context.Context, event *entity.LLMUsageEvent) error {
	if event == nil {
		return nil
	}
	ctx, span := tracer.Start(ctx, "postgres.LLMUsageEventRepository.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.workflow", event.Workflow),
		attribute.String("llm.modality", event.Modality),
		attribute.Int("llm.total_tokens", event.TotalTokens()),
	)

	if err := getDB(ctx, r.client.db).Create(event).Error; err != nil {
		tracer.RecordError(span, err)
		return fmt.Errorf("failed to create llm usage event: %w", err)
	}
	return nil
}
