package entity

import "time"

// GenerationTokenStatus 用户的生成额度
type GenerationTokenStatus struct {
	UID                   string     `json:"-" gorm:"type:varchar(128);primaryKey"`
	Tokens                int        `json:"tokens"`
	AutoCap               int        `json:"autoCap"`
	CreatedAt             *time.Time `json:"createdAt"`
	UpdatedAt             *time.Time `json:"updatedAt"`
	LastLoginAt           *time.Time `json:"lastLoginAt"`
	LastRefillAt          *time.Time `json:"lastRefillAt"`
	LastConsumedAt        *time.Time `json:"lastConsumedAt"`
	LastConsumedSignature *string    `json:"lastConsumedSignature"`
}

// Clone 深拷贝，供内存存储返回快照
func (s *GenerationTokenStatus) Clone() *GenerationTokenStatus {
	if s == nil {
		return nil
	}
	out := *s
	out.CreatedAt = cloneTime(s.CreatedAt)
	out.UpdatedAt = cloneTime(s.UpdatedAt)
	out.LastLoginAt = cloneTime(s.LastLoginAt)
	out.LastRefillAt = cloneTime(s.LastRefillAt)
	out.LastConsumedAt = cloneTime(s.LastConsumedAt)
	if s.LastConsumedSignature != nil {
		sig := *s.LastConsumedSignature
		out.LastConsumedSignature = &sig
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
