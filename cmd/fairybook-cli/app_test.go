package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/interfaces/http/dto"
)

type fakeAPI struct {
	stageCalls int
	failFirst  bool
	exports    []dto.RecordExportRequest
}

func (f *fakeAPI) StoryTypes(ctx context.Context, count int) ([]entity.StoryType, error) {
	return []entity.StoryType{{Name: "Adventure", Prompt: "a journey"}}, nil
}

func (f *fakeAPI) StoryCards(ctx context.Context, count int, stage entity.StageName) ([]entity.StoryCard, error) {
	return []entity.StoryCard{
		{ID: "c1", Name: "Lantern", Prompt: "a glowing lantern", Stage: string(stage)},
		{ID: "c2", Name: "Bridge", Prompt: "a rope bridge", Stage: string(stage)},
	}, nil
}

func (f *fakeAPI) GenerateStory(ctx context.Context, req dto.GenerateStoryRequest) (*dto.GenerateStoryResponse, error) {
	return &dto.GenerateStoryResponse{
		Title:       "Moon Lantern",
		Synopsis:    "A small fox follows the moon.",
		Protagonist: "Fox",
		Style:       entity.IllustrationStyle{Name: "Watercolor", Style: "soft"},
	}, nil
}

func (f *fakeAPI) GenerateImages(ctx context.Context, req dto.GenerateImagesRequest) (*dto.GenerateImagesResponse, error) {
	return nil, errors.New("image model unavailable")
}

func (f *fakeAPI) GenerateStage(ctx context.Context, req dto.GenerateStageRequest) (*entity.StageResult, error) {
	f.stageCalls++
	if f.failFirst && f.stageCalls == 1 {
		return nil, errors.New("upstream timeout")
	}
	return &entity.StageResult{
		Card:  entity.StoryCard{Name: req.StoryCard.Name},
		Story: entity.StageStory{Title: req.Stage.Name, Paragraphs: []string{"p1", "p2"}},
	}, nil
}

func (f *fakeAPI) RecordExport(ctx context.Context, req dto.RecordExportRequest) (*dto.LibraryEntry, error) {
	f.exports = append(f.exports, req)
	return &dto.LibraryEntry{ID: "entry-1", Title: req.Title, StageCount: req.StageCount}, nil
}

func (f *fakeAPI) Library(ctx context.Context, limit int) ([]dto.LibraryEntry, error) {
	out := make([]dto.LibraryEntry, 0, len(f.exports))
	for _, e := range f.exports {
		out = append(out, dto.LibraryEntry{ID: "entry-1", Title: e.Title, CreatedAt: "2025-10-05 11:20", StageCount: e.StageCount})
	}
	return out, nil
}

func (f *fakeAPI) MOTD(ctx context.Context) (*dto.MOTD, error) {
	return &dto.MOTD{Message: "Hello readers", IsActive: true, UpdatedAtKst: "2025-10-01 21:00 KST"}, nil
}

func (f *fakeAPI) Session(ctx context.Context) (*entity.Session, error) {
	return &entity.Session{Authenticated: true, User: &entity.User{UID: "u-1", DisplayName: "Mina"}}, nil
}

// TestRunFullStory 测试从选择类型到登记作品的完整流程，含一次重试
func TestRunFullStory(t *testing.T) {
	api := &fakeAPI{failFirst: true}
	script := strings.Join([]string{
		"1",                // create
		"6-8",              // age
		"moon",             // topic
		"1",                // story type
		"2", "",            // beginning: card 2, retry after failure
		"1", "1", "1", "1", // remaining stages
		"",                 // export
		"2",                // library
		"q",
	}, "\n") + "\n"

	var out bytes.Buffer
	err := newApp(api, strings.NewReader(script), &out).Run(context.Background())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Signed in as Mina")
	assert.Contains(t, text, "Notice (2025-10-01 21:00 KST): Hello readers")
	assert.Contains(t, text, "Cover: failed: image model unavailable")
	assert.Contains(t, text, "! upstream timeout")
	assert.Contains(t, text, "Saved Moon Lantern (entry-1)")
	assert.Contains(t, text, "Moon Lantern (5 stages)")

	assert.Equal(t, 6, api.stageCalls)
	require.Len(t, api.exports, 1)
	assert.Equal(t, 5, api.exports[0].StageCount)
	assert.Equal(t, []string{"beginning", "development", "crisis", "climax", "resolution"}, api.exports[0].StageNames)
}

// TestRunCancelStage 测试放弃重试后回到首页
func TestRunCancelStage(t *testing.T) {
	api := &fakeAPI{failFirst: true}
	script := "1\n6-8\n\n1\n1\nn\nq\n"

	var out bytes.Buffer
	require.NoError(t, newApp(api, strings.NewReader(script), &out).Run(context.Background()))
	assert.Contains(t, out.String(), "! stage generation cancelled")
	assert.Empty(t, api.exports)
}

// TestRunAgeRequired 测试年龄为空时重新询问
func TestRunAgeRequired(t *testing.T) {
	api := &fakeAPI{}
	script := "1\n\n\n:q\n"

	var out bytes.Buffer
	require.NoError(t, newApp(api, strings.NewReader(script), &out).Run(context.Background()))
	assert.Contains(t, out.String(), "age is required")
	assert.Zero(t, api.stageCalls)
}

// TestRunEndOfInput 测试输入结束时正常退出
func TestRunEndOfInput(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newApp(&fakeAPI{}, strings.NewReader(""), &out).Run(context.Background()))
}
