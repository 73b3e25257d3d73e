// Package memory 提供进程内存储实现，默认携带演示数据
package memory

import (
	"time"

	"fairybook-api/internal/domain/entity"
)

// SeedUID 演示数据所属用户
const SeedUID = "sample-user"

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

func timePtr(s string) *time.Time {
	t := mustTime(s)
	return &t
}

// SeedMOTD 默认公告
func SeedMOTD() *entity.MOTD {
	return &entity.MOTD{
		ID:        1,
		Message:   "<strong>Welcome!</strong> Mock data is served until the Gemini proxy is connected.",
		IsActive:  true,
		UpdatedAt: mustTime("2025-10-01T12:00:00Z"),
		UpdatedBy: strPtr("Operations team"),
	}
}

// SeedTokenStatus 演示用户的额度
func SeedTokenStatus() *entity.GenerationTokenStatus {
	return &entity.GenerationTokenStatus{
		UID:                   SeedUID,
		Tokens:                7,
		AutoCap:               10,
		CreatedAt:             timePtr("2025-09-30T15:00:00Z"),
		UpdatedAt:             timePtr("2025-10-05T02:00:00Z"),
		LastLoginAt:           timePtr("2025-10-05T02:05:00Z"),
		LastRefillAt:          timePtr("2025-10-04T15:00:00Z"),
		LastConsumedAt:        timePtr("2025-10-02T11:00:00Z"),
		LastConsumedSignature: strPtr("mock-signature-previous-story"),
	}
}

// SeedLibrary 演示作品，时间为 KST 墙钟时间
func SeedLibrary() []*entity.LibraryEntry {
	return []*entity.LibraryEntry{
		{
			ID:         "storybook-20251005-1",
			Title:      "The Promise of the Moonlit Forest",
			AuthorUID:  strPtr(SeedUID),
			StageCount: 5,
			CreatedAt:  mustTime("2025-10-05T11:20:00+09:00"),
		},
		{
			ID:          "storybook-20250921-1",
			Title:       "The Star Swarm and the Mischievous Rabbit",
			AuthorUID:   strPtr(SeedUID),
			DownloadURL: strPtr("https://example.com/storybook-20250921.html"),
			StageCount:  6,
			CreatedAt:   mustTime("2025-09-21T09:05:00+09:00"),
		},
	}
}
