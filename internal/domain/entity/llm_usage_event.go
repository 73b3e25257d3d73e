package entity

import "time"

// LLMUsageEvent 模型调用流水，UID 为空表示匿名调用
type LLMUsageEvent struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey"`
	UID              *string   `json:"uid" gorm:"type:varchar(128);index"`
	Workflow         string    `json:"workflow" gorm:"type:varchar(32);index;not null"`
	Modality         string    `json:"modality" gorm:"type:varchar(16);not null;default:text"`
	Provider         string    `json:"provider" gorm:"type:varchar(32);not null"`
	Model            string    `json:"model" gorm:"type:varchar(64);not null"`
	TokensPrompt     int       `json:"tokens_prompt" gorm:"not null;default:0"`
	TokensCompletion int       `json:"tokens_completion" gorm:"not null;default:0"`
	DurationMs       int       `json:"duration_ms" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (LLMUsageEvent) TableName() string {
	return "llm_usage_events"
}

// TotalTokens 输入与输出 token 之和
func (e LLMUsageEvent) TotalTokens() int {
	return e.TokensPrompt + e.TokensCompletion
}
