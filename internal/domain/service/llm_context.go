// Package service 定义跨层共享的领域契约
package service

import (
	"context"
	"strings"

	"fairybook-api/pkg/logger"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

const unknownLabel = "unknown"

// 生成流程中的工作流名称，用作指标与日志标签
const (
	WorkflowSynopsis    = "synopsis"
	WorkflowProtagonist = "protagonist"
	WorkflowTitle       = "title"
	WorkflowStageText   = "stage_text"
	WorkflowCharacter   = "character_image"
	WorkflowCover       = "cover_image"
	WorkflowStageImage  = "stage_image"
)

// WithWorkflow 标记当前调用所属的工作流，同时写入日志上下文
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	w := strings.TrimSpace(workflow)
	if ctx == nil || w == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, llmCtxKeyWorkflow, w)
	return logger.WithContext(ctx, logger.WorkflowKey, w)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	p := strings.TrimSpace(provider)
	if ctx == nil || p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyProvider, p)
}

func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithProvider(WithWorkflow(ctx, workflow), provider)
}

func WorkflowFromContext(ctx context.Context) string {
	return labelFromContext(ctx, llmCtxKeyWorkflow)
}

func ProviderFromContext(ctx context.Context) string {
	return labelFromContext(ctx, llmCtxKeyProvider)
}

func labelFromContext(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return unknownLabel
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return unknownLabel
	}
	return strings.TrimSpace(s)
}
