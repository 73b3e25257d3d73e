package quota

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	"fairybook-api/internal/domain/service"
)

// LLMUsageRecorder 把每次模型调用写入流水表，调用者取自请求会话
type LLMUsageRecorder struct {
	usageRepo repository.LLMUsageEventRepository
}

func NewLLMUsageRecorder(usageRepo repository.LLMUsageEventRepository) *LLMUsageRecorder {
	return &LLMUsageRecorder{usageRepo: usageRepo}
}

var _ service.LLMUsageRecorder = (*LLMUsageRecorder)(nil)

func (r *LLMUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil || r.usageRepo == nil {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	modality := strings.TrimSpace(in.Modality)
	if modality == "" {
		modality = service.ModalityText
	}

	evt := &entity.LLMUsageEvent{
		ID:               uuid.NewString(),
		Modality:         modality,
		Provider:         strings.TrimSpace(in.Provider),
		Model:            strings.TrimSpace(in.Model),
		Workflow:         strings.TrimSpace(in.Workflow),
		TokensPrompt:     in.PromptTokens,
		TokensCompletion: in.CompletionTokens,
		DurationMs:       in.DurationMs,
	}
	if uid := service.SessionFromContext(ctx).UID(); uid != "" {
		evt.UID = &uid
	}
	return r.usageRepo.Create(ctx, evt)
}
