package entity

import (
	"time"

	"github.com/lib/pq"
)

// DefaultLibraryTitle 导出时未给标题的默认值
const DefaultLibraryTitle = "Untitled story"

// LibraryEntry 作品库条目（导出记录）
type LibraryEntry struct {
	ID          string         `json:"id" gorm:"type:varchar(64);primaryKey"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	AuthorUID   *string        `json:"authorUid" gorm:"type:varchar(128);index"`
	AuthorName  *string        `json:"-" gorm:"type:varchar(128)"`
	DownloadURL *string        `json:"downloadUrl" gorm:"type:text"`
	StageCount  int            `json:"stageCount" gorm:"not null;default:0"`
	StageNames  pq.StringArray `json:"-" gorm:"type:text[]"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"autoCreateTime:false;index;not null"`
}

func (LibraryEntry) TableName() string {
	return "library_entries"
}
