package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/interfaces/http/dto"
	"fairybook-api/internal/interfaces/http/middleware"
	"fairybook-api/internal/wizard"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// TestStoryTypesQuery 测试 count 参数与 Bearer 令牌透传
func TestStoryTypesQuery(t *testing.T) {
	var gotCount, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/story/types", r.URL.Path)
		gotCount = r.URL.Query().Get("count")
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, dto.StoryTypesResponse{StoryTypes: []entity.StoryType{{Name: "Adventure", Prompt: "go"}}})
	}))
	defer srv.Close()

	p := New(srv.URL+"/", WithToken("abc"))
	types, err := p.StoryTypes(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Adventure", types[0].Name)
	assert.Equal(t, "3", gotCount)
	assert.Equal(t, "Bearer abc", gotAuth)
}

// TestGenerateStorySignature 测试每次生成携带不同签名
func TestGenerateStorySignature(t *testing.T) {
	var sigs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sigs = append(sigs, r.Header.Get(middleware.SignatureHeader))
		var req dto.GenerateStoryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "6-8", req.Age)
		writeJSON(w, http.StatusOK, dto.GenerateStoryResponse{Title: "Moon", Synopsis: "s", Protagonist: "p"})
	}))
	defer srv.Close()

	p := New(srv.URL)
	for range 2 {
		resp, err := p.GenerateStory(context.Background(), dto.GenerateStoryRequest{Age: "6-8", StoryType: &dto.StoryTypeRef{Name: "A"}})
		require.NoError(t, err)
		assert.Equal(t, "Moon", resp.Title)
	}
	require.Len(t, sigs, 2)
	assert.NotEmpty(t, sigs[0])
	assert.NotEqual(t, sigs[0], sigs[1])
}

// TestAPIErrorDecoding 测试错误响应转为 APIError
func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Error: "title was not valid JSON", Code: "4002"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GenerateStage(context.Background(), dto.GenerateStageRequest{Title: "X"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "4002", apiErr.Code)
	assert.Equal(t, "title was not valid JSON", apiErr.Message)
}

// TestAPIErrorWithoutBody 测试非 JSON 错误体回退为状态文本
func TestAPIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).MOTD(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), apiErr.Message)
	assert.Empty(t, apiErr.Code)
}

// TestWizardOverHTTP 测试向导经 HTTP 完成类型选择与梗概生成
func TestWizardOverHTTP(t *testing.T) {
	dataURL := "data:image/png;base64,cG5n"
	mux := http.NewServeMux()
	mux.HandleFunc("/api/story/types", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.StoryTypesResponse{StoryTypes: []entity.StoryType{
			{Name: "Adventure", Prompt: "a journey"},
			{Name: "Friendship", Prompt: "two friends"},
		}})
	})
	mux.HandleFunc("/api/story/generate", func(w http.ResponseWriter, r *http.Request) {
		var req dto.GenerateStoryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Friendship", req.StoryType.Name)
		writeJSON(w, http.StatusOK, dto.GenerateStoryResponse{
			Title:       "Two Lanterns",
			Synopsis:    "syn",
			Protagonist: "pro",
			Style:       entity.IllustrationStyle{Name: "Watercolor", Style: "soft, warm"},
		})
	})
	mux.HandleFunc("/api/story/images", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.GenerateImagesResponse{
			Character: entity.StoryImage{DataURL: &dataURL, MimeType: "image/png", Prompt: "c"},
			Cover:     entity.StoryImage{DataURL: &dataURL, MimeType: "image/png", Prompt: "v"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	flow := wizard.NewFlow(New(srv.URL))
	flow.Begin()
	require.NoError(t, flow.SetAgeTopic("6-8", "lanterns"))
	require.NoError(t, flow.LoadStoryTypes(ctx, 2))
	require.NoError(t, flow.ChooseStoryType(ctx, 1))

	s := flow.Session
	assert.Equal(t, wizard.StepReview, s.Step)
	require.NotNil(t, s.StoryTitle)
	assert.Equal(t, "Two Lanterns", *s.StoryTitle)
	assert.True(t, s.CoverReady)
	require.NotNil(t, s.CharacterImage.DataURL)
	assert.Equal(t, dataURL, *s.CharacterImage.DataURL)
}
