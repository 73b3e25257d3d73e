package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairybook-api/internal/application/catalog"
	"fairybook-api/internal/application/identity"
	"fairybook-api/internal/application/library"
	"fairybook-api/internal/application/motd"
	"fairybook-api/internal/application/quota"
	"fairybook-api/internal/application/story"
	"fairybook-api/internal/config"
	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/infrastructure/persistence/memory"
	"fairybook-api/internal/interfaces/http/handler"
	"fairybook-api/internal/workflow/chain"
	wfmodel "fairybook-api/internal/workflow/model"
	wfnode "fairybook-api/internal/workflow/node"
	workflowport "fairybook-api/internal/workflow/port"
	"fairybook-api/pkg/utils"
)

type scriptedModel struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := min(m.calls, len(m.replies)-1)
	m.calls++
	return schema.AssistantMessage(m.replies[idx], nil), nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func (m *scriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeFactory struct{ model model.BaseChatModel }

func (f *fakeFactory) Get(context.Context, string) (model.BaseChatModel, error) {
	return f.model, nil
}

type fakeImages struct{ calls int }

func (f *fakeImages) Generate(context.Context, workflowport.ImageRequest) (*workflowport.Image, error) {
	f.calls++
	return &workflowport.Image{Data: []byte("png"), MIMEType: "image/png"}, nil
}

type testEnv struct {
	engine *gin.Engine
	model  *scriptedModel
	images *fakeImages
	jwt    *utils.JWTManager
}

func newTestEnv(t *testing.T, replies []string, mutate func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Name = "fairybook-api"
	cfg.Tokens.Enforce = false
	if mutate != nil {
		mutate(cfg)
	}

	m := &scriptedModel{replies: replies}
	images := &fakeImages{}
	policy := wfnode.NewRetryPolicy(3, time.Millisecond)

	cat := catalog.New(
		[]entity.StoryType{{ID: "1", Name: "Adventure", Prompt: "a brave journey"}},
		[]entity.StoryCard{{ID: "c1", Name: "Lost key", Prompt: "a key goes missing", Stage: "beginning"}},
		[]entity.IllustrationStyle{{Name: "Watercolor", Style: "soft, warm"}},
	)
	stories := story.NewService(
		chain.NewStoryTextChain(&fakeFactory{model: m}, nil, policy),
		chain.NewStoryImageChain(images, nil, policy),
		cat,
		wfmodel.TextOptions{Provider: "gemini"},
	)

	loc := quota.LoadLocation(quota.DefaultTimezone)
	tokens := quota.NewTokenService(memory.NewTokenRepository(), quota.Options{Location: loc})
	jwt := utils.NewJWTManager("secret", "fairybook")

	handlers := Handlers{
		Health:  handler.NewHealthHandler("test", nil),
		Story:   handler.NewStoryHandler(stories, cat, tokens, cfg.Tokens.Enforce),
		MOTD:    handler.NewMOTDHandler(motd.NewService(memory.NewMOTDRepository(memory.SeedMOTD()), memory.NewCache(time.Minute, time.Minute), time.Minute), loc),
		Token:   handler.NewTokenHandler(tokens),
		Library: handler.NewLibraryHandler(library.NewService(memory.NewLibraryRepository(nil)), loc),
		Session: handler.NewSessionHandler(tokens),
	}
	deps := Deps{
		Sessions: identity.NewSessionProvider(jwt, cfg.Security.DemoUser),
		Limiter:  memory.NewRateLimiter(),
	}

	return &testEnv{engine: New(cfg, handlers, deps).Engine(), model: m, images: images, jwt: jwt}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func generateBody() map[string]any {
	return map[string]any{
		"age":       "6-8",
		"topic":     "friendship",
		"storyType": map[string]any{"id": 1, "name": "Adventure", "prompt": "a brave journey"},
	}
}

// TestGenerateEndToEnd 测试梗概、主角、标题三步生成
func TestGenerateEndToEnd(t *testing.T) {
	env := newTestEnv(t, []string{"A rabbit sails.", "Milo the rabbit.", `{"title":"X"}`}, nil)

	w := env.do(t, http.MethodPost, "/api/story/generate", generateBody(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "X", resp["title"])
	assert.Equal(t, "A rabbit sails.", resp["synopsis"])
	assert.Equal(t, "Milo the rabbit.", resp["protagonist"])
	assert.Equal(t, "Watercolor", resp["style"].(map[string]any)["name"])
	assert.Equal(t, 3, env.model.Calls())
}

// TestGenerateProseTitleIsBadGateway 测试标题步骤返回无法解析的文本时返回 502
func TestGenerateProseTitleIsBadGateway(t *testing.T) {
	env := newTestEnv(t, []string{"A rabbit sails.", "Milo the rabbit.", "I think a good title would be nice"}, nil)

	w := env.do(t, http.MethodPost, "/api/story/generate", generateBody(), nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	assert.Equal(t, "4002", resp["code"])
}

// TestGenerateMissingAge 测试缺少年龄时返回 400 且不调用模型
func TestGenerateMissingAge(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)
	body := generateBody()
	delete(body, "age")

	w := env.do(t, http.MethodPost, "/api/story/generate", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "age is required")
	assert.Equal(t, 0, env.model.Calls())
}

// TestStageMissingCardPrompt 测试卡片缺少 prompt 时返回 400 且不调用模型
func TestStageMissingCardPrompt(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)
	body := map[string]any{
		"title":     "X",
		"storyType": map[string]any{"name": "Adventure", "prompt": "a brave journey"},
		"storyCard": map[string]any{"name": "Lost key"},
	}

	w := env.do(t, http.MethodPost, "/api/story/stage", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.model.Calls())
	assert.Equal(t, 0, env.images.calls)
}

// TestStageWithStyle 测试带风格的阶段生成包含插画
func TestStageWithStyle(t *testing.T) {
	env := newTestEnv(t, []string{`{"title":"Chapter One","paragraphs":["First.","Second."]}`}, nil)
	body := map[string]any{
		"title":     "X",
		"storyType": map[string]any{"name": "Adventure", "prompt": "a brave journey"},
		"stage":     map[string]any{"name": "beginning", "index": 0, "total": 5},
		"storyCard": map[string]any{"name": "Lost key", "prompt": "a key goes missing"},
		"style":     map[string]any{"name": "Watercolor", "style": "soft, warm"},
	}

	w := env.do(t, http.MethodPost, "/api/story/stage", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Stage entity.StageResult `json:"stage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.StageName("beginning"), resp.Stage.Stage)
	assert.Equal(t, []string{"First.", "Second."}, resp.Stage.Story.Paragraphs)
	require.NotNil(t, resp.Stage.Image)
	require.NotNil(t, resp.Stage.Image.DataURL)
	assert.Equal(t, "data:image/png;base64,cG5n", *resp.Stage.Image.DataURL)
}

// TestImagesMissingStyle 测试缺少风格时返回 400
func TestImagesMissingStyle(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)
	w := env.do(t, http.MethodPost, "/api/story/images", map[string]any{"title": "X"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.images.calls)
}

// TestCatalogRoutes 测试目录抽样接口
func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)

	w := env.do(t, http.MethodGet, "/api/story/types?count=3", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storyTypes"`)

	w = env.do(t, http.MethodGet, "/api/story/cards?stage=nowhere", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lost key")
}

// TestMOTDAndSession 测试公告与匿名会话
func TestMOTDAndSession(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)

	w := env.do(t, http.MethodGet, "/api/motd", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updatedAtKst":"2025-10-01 21:00 KST"`)

	w = env.do(t, http.MethodGet, "/api/auth/session", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = env.do(t, http.MethodGet, "/api/tokens", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":null}`, w.Body.String())
}

// TestTokenEnforcement 测试开启额度后生成会扣减，同一签名不重复扣减
func TestTokenEnforcement(t *testing.T) {
	env := newTestEnv(t, []string{"A rabbit sails.", "Milo the rabbit.", `{"title":"X"}`}, func(cfg *config.Config) {
		cfg.Tokens.Enforce = true
	})

	w := env.do(t, http.MethodPost, "/api/story/generate", generateBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := env.jwt.GenerateToken("u-1", "Mina", "", time.Hour)
	require.NoError(t, err)
	headers := map[string]string{
		"Authorization":          "Bearer " + token,
		"X-Generation-Signature": "sig-1",
	}

	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodPost, "/api/story/generate", generateBody(), headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/tokens", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status entity.GenerationTokenStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Status.Tokens)
	assert.Equal(t, "sig-1", *resp.Status.LastConsumedSignature)
}

// TestTokenRefundOnGenerationFailure 测试生成失败时归还额度，且同一签名重试会重新扣减
func TestTokenRefundOnGenerationFailure(t *testing.T) {
	env := newTestEnv(t, []string{"A rabbit sails.", "Milo the rabbit.", "I think a good title would be nice"}, func(cfg *config.Config) {
		cfg.Tokens.Enforce = true
	})
	token, err := env.jwt.GenerateToken("u-1", "Mina", "", time.Hour)
	require.NoError(t, err)
	headers := map[string]string{
		"Authorization":          "Bearer " + token,
		"X-Generation-Signature": "sig-1",
	}

	w := env.do(t, http.MethodPost, "/api/story/generate", generateBody(), headers)
	require.Equal(t, http.StatusBadGateway, w.Code)

	w = env.do(t, http.MethodGet, "/api/tokens", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status entity.GenerationTokenStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Status.Tokens)
	assert.Nil(t, resp.Status.LastConsumedSignature)
}

// TestTokensReadOnlyUntilSessionSync 测试查询额度不创建记录，会话接口负责同步
func TestTokensReadOnlyUntilSessionSync(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)
	token, err := env.jwt.GenerateToken("u-2", "Jun", "", time.Hour)
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + token}

	w := env.do(t, http.MethodGet, "/api/tokens", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":null}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/auth/session", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = env.do(t, http.MethodGet, "/api/tokens", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status *entity.GenerationTokenStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Status)
	assert.Equal(t, 7, resp.Status.Tokens)
	assert.Equal(t, 10, resp.Status.AutoCap)
}

// TestLibraryRecordAndList 测试记录导出后可在列表中看到
func TestLibraryRecordAndList(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)
	token, err := env.jwt.GenerateToken("u-1", "Mina", "", time.Hour)
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + token}

	w := env.do(t, http.MethodPost, "/api/library", map[string]any{"stageCount": 5}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/library", map[string]any{"stageCount": 5}, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"title":"Untitled story"`)

	w = env.do(t, http.MethodGet, "/api/library", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "u-1", resp.Entries[0]["authorUid"])
}

// TestRateLimit 测试超过阈值返回 429
func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Hour}
	})

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodGet, "/api/story/types", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := env.do(t, http.MethodGet, "/api/story/types", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = env.do(t, http.MethodGet, "/api/motd", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestHealthRoutes 测试健康检查
func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t, []string{"unused"}, nil)
	for _, path := range []string{"/health", "/live", "/ready"} {
		w := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
