package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/infrastructure/persistence/memory"
)

// TestLLMUsageRecorder 测试调用流水写入
func TestLLMUsageRecorder(t *testing.T) {
	repo := memory.NewLLMUsageEventRepository(10)
	rec := NewLLMUsageRecorder(repo)

	err := rec.Record(context.Background(), service.LLMUsageInput{
		Workflow: service.WorkflowTitle, Provider: " gemini ", Model: "gemini-2.5-flash",
		PromptTokens: 120, CompletionTokens: 8, DurationMs: 340,
	})
	require.NoError(t, err)

	events := repo.Events()
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, "gemini", events[0].Provider)
	assert.Equal(t, service.WorkflowTitle, events[0].Workflow)
	assert.Equal(t, 128, events[0].TotalTokens())
	assert.Equal(t, service.ModalityText, events[0].Modality)
	assert.Nil(t, events[0].UID)

	assert.Error(t, rec.Record(context.Background(), service.LLMUsageInput{PromptTokens: -1}))
	assert.NoError(t, (*LLMUsageRecorder)(nil).Record(context.Background(), service.LLMUsageInput{}))
}

// TestLLMUsageRecorderSession 测试图像调用记录模态与会话用户
func TestLLMUsageRecorderSession(t *testing.T) {
	repo := memory.NewLLMUsageEventRepository(10)
	rec := NewLLMUsageRecorder(repo)

	ctx := service.WithSession(context.Background(), &entity.Session{
		Authenticated: true,
		User:          &entity.User{UID: "u-42"},
	})
	require.NoError(t, rec.Record(ctx, service.LLMUsageInput{
		Workflow: service.WorkflowCover, Provider: "gemini", Model: "gemini-2.5-flash-image",
		Modality: service.ModalityImage,
	}))

	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, service.ModalityImage, events[0].Modality)
	require.NotNil(t, events[0].UID)
	assert.Equal(t, "u-42", *events[0].UID)
}
