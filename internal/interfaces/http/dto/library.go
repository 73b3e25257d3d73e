package dto

import (
	"time"

	"fairybook-api/internal/domain/entity"
)

// LibraryTimeLayout 作品库时间展示格式
const LibraryTimeLayout = "2006-01-02 15:04"

// LibraryEntry 作品库条目
type LibraryEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	CreatedAt   string  `json:"createdAt"`
	AuthorUID   *string `json:"authorUid"`
	DownloadURL *string `json:"downloadUrl"`
	StageCount  int     `json:"stageCount"`
}

// LibraryListResponse GET /api/library
type LibraryListResponse struct {
	Entries []LibraryEntry `json:"entries"`
}

// RecordExportRequest POST /api/library
type RecordExportRequest struct {
	Title       string   `json:"title"`
	StageCount  int      `json:"stageCount"`
	StageNames  []string `json:"stageNames,omitempty"`
	DownloadURL *string  `json:"downloadUrl,omitempty"`
}

// RecordExportResponse 新建的条目
type RecordExportResponse struct {
	Entry LibraryEntry `json:"entry"`
}

// NewLibraryEntry 按时区格式化创建时间
func NewLibraryEntry(e *entity.LibraryEntry, loc *time.Location) LibraryEntry {
	if loc == nil {
		loc = time.UTC
	}
	return LibraryEntry{
		ID:          e.ID,
		Title:       e.Title,
		CreatedAt:   e.CreatedAt.In(loc).Format(LibraryTimeLayout),
		AuthorUID:   e.AuthorUID,
		DownloadURL: e.DownloadURL,
		StageCount:  e.StageCount,
	}
}

// NewLibraryEntries 批量转换
func NewLibraryEntries(entries []*entity.LibraryEntry, loc *time.Location) []LibraryEntry {
	out := make([]LibraryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewLibraryEntry(e, loc))
	}
	return out
}
