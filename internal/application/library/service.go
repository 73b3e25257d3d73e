// Package library 记录与查询导出的作品
package library

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	apperrors "fairybook-api/pkg/errors"
)

// ExportInput 一次导出
type ExportInput struct {
	AuthorUID   string
	AuthorName  string
	Title       string
	StageCount  int
	StageNames  []string
	DownloadURL *string
}

// Service 作品库服务
type Service struct {
	repo  repository.LibraryRepository
	now   func() time.Time
	newID func() string
}

func NewService(repo repository.LibraryRepository) *Service {
	return &Service{repo: repo, now: time.Now, newID: uuid.NewString}
}

// List authorUID 为空时列出全部条目，按创建时间倒序
func (s *Service) List(ctx context.Context, authorUID string, limit int) ([]*entity.LibraryEntry, error) {
	entries, err := s.repo.List(ctx, strings.TrimSpace(authorUID), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "list library entries")
	}
	return entries, nil
}

// RecordExport 写入导出记录；标题为空时使用默认标题
func (s *Service) RecordExport(ctx context.Context, in ExportInput) (*entity.LibraryEntry, error) {
	uid := strings.TrimSpace(in.AuthorUID)
	if uid == "" {
		return nil, apperrors.Validation("a signed-in user is required to record an export")
	}
	if in.StageCount < 0 {
		return nil, apperrors.Validation("stageCount must not be negative")
	}

	names := make([]string, 0, len(in.StageNames))
	for _, n := range in.StageNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	count := in.StageCount
	if count == 0 {
		count = len(names)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = entity.DefaultLibraryTitle
	}

	entry := &entity.LibraryEntry{
		ID:         s.newID(),
		Title:      title,
		AuthorUID:  &uid,
		StageCount: count,
		StageNames: names,
		CreatedAt:  s.now().UTC(),
	}
	if name := strings.TrimSpace(in.AuthorName); name != "" {
		entry.AuthorName = &name
	}
	if in.DownloadURL != nil {
		if u := strings.TrimSpace(*in.DownloadURL); u != "" {
			entry.DownloadURL = &u
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "record library entry")
	}
	return entry, nil
}
