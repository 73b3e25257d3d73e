package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// MOTD 首页公告
type MOTD struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	Message   string    `json:"message" gorm:"type:text;not null;default:''"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:false"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime:false;not null"`
	UpdatedBy *string   `json:"updatedBy" gorm:"type:varchar(128)"`
}

func (MOTD) TableName() string {
	return "motd"
}

// Active 消息为空的公告视为未启用
func (m *MOTD) Active() bool {
	return m != nil && m.IsActive && strings.TrimSpace(m.Message) != ""
}

// Signature sha256(updatedAt|message) 的十六进制，客户端据此判断是否已读
func (m *MOTD) Signature() string {
	payload := m.UpdatedAt.UTC().Format(time.RFC3339Nano) + "|" + m.Message
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// UpdatedAtIn 按时区格式化更新时间，如 "2025-10-01 21:00 KST"
func (m *MOTD) UpdatedAtIn(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t := m.UpdatedAt.In(loc)
	return t.Format("2006-01-02 15:04") + " " + t.Format("MST")
}
