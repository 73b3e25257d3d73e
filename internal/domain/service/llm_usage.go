package service

import "context"

// 模型调用的产出类型
const (
	ModalityText  = "text"
	ModalityImage = "image"
)

// LLMUsageInput 一次文本或图像模型调用的用量
type LLMUsageInput struct {
	Workflow string
	Provider string
	Model    string
	// Modality 为空时按文本记录
	Modality string

	PromptTokens     int
	CompletionTokens int
	DurationMs       int
}

// LLMUsageRecorder 记录模型用量，失败只告警，不影响生成结果
type LLMUsageRecorder interface {
	Record(ctx context.Context, in LLMUsageInput) error
}
