package dto

import (
	"time"

	"fairybook-api/internal/domain/entity"
)

// MOTD 公告视图
type MOTD struct {
	Message      string    `json:"message"`
	IsActive     bool      `json:"isActive"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UpdatedAtKst string    `json:"updatedAtKst"`
	UpdatedBy    *string   `json:"updatedBy"`
	Signature    string    `json:"signature"`
}

// MOTDResponse GET /api/motd
type MOTDResponse struct {
	MOTD *MOTD `json:"motd"`
}

// NewMOTD 计算签名与本地时间
func NewMOTD(m *entity.MOTD, loc *time.Location) *MOTD {
	if m == nil {
		return nil
	}
	return &MOTD{
		Message:      m.Message,
		IsActive:     m.Active(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		UpdatedAtKst: m.UpdatedAtIn(loc),
		UpdatedBy:    m.UpdatedBy,
		Signature:    m.Signature(),
	}
}

// TokenStatusResponse GET /api/tokens
type TokenStatusResponse struct {
	Status *entity.GenerationTokenStatus `json:"status"`
}
