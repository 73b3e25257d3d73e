// Package client 提供访问 fairybook-api 的 HTTP 客户端，实现向导的 Pipeline
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/interfaces/http/dto"
	"fairybook-api/internal/interfaces/http/middleware"
)

// DefaultTimeout 生成接口包含多次模型调用，超时放宽
const DefaultTimeout = 3 * time.Minute

// APIError 服务端返回的错误
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d [%s]: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Option 客户端选项
type Option func(*HTTPPipeline)

// WithToken 携带 Bearer 令牌
func WithToken(token string) Option {
	return func(p *HTTPPipeline) { p.token = strings.TrimSpace(token) }
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(p *HTTPPipeline) { p.http = hc }
}

// HTTPPipeline 通过 REST 接口驱动生成流程
type HTTPPipeline struct {
	baseURL string
	token   string
	http    *http.Client
}

// New 创建客户端，baseURL 形如 http://localhost:8080
func New(baseURL string, opts ...Option) *HTTPPipeline {
	p := &HTTPPipeline{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StoryTypes GET /api/story/types
func (p *HTTPPipeline) StoryTypes(ctx context.Context, count int) ([]entity.StoryType, error) {
	q := url.Values{}
	if count > 0 {
		q.Set("count", strconv.Itoa(count))
	}
	var resp dto.StoryTypesResponse
	if err := p.do(ctx, http.MethodGet, "/api/story/types", q, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.StoryTypes, nil
}

// StoryCards GET /api/story/cards
func (p *HTTPPipeline) StoryCards(ctx context.Context, count int, stage entity.StageName) ([]entity.StoryCard, error) {
	q := url.Values{}
	if count > 0 {
		q.Set("count", strconv.Itoa(count))
	}
	if stage != "" {
		q.Set("stage", string(stage))
	}
	var resp dto.StoryCardsResponse
	if err := p.do(ctx, http.MethodGet, "/api/story/cards", q, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

// GenerateStory POST /api/story/generate，每次调用带新的签名
func (p *HTTPPipeline) GenerateStory(ctx context.Context, req dto.GenerateStoryRequest) (*dto.GenerateStoryResponse, error) {
	headers := map[string]string{middleware.SignatureHeader: uuid.NewString()}
	var resp dto.GenerateStoryResponse
	if err := p.do(ctx, http.MethodPost, "/api/story/generate", nil, headers, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateImages POST /api/story/images
func (p *HTTPPipeline) GenerateImages(ctx context.Context, req dto.GenerateImagesRequest) (*dto.GenerateImagesResponse, error) {
	var resp dto.GenerateImagesResponse
	if err := p.do(ctx, http.MethodPost, "/api/story/images", nil, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateStage POST /api/story/stage
func (p *HTTPPipeline) GenerateStage(ctx context.Context, req dto.GenerateStageRequest) (*entity.StageResult, error) {
	var resp dto.GenerateStageResponse
	if err := p.do(ctx, http.MethodPost, "/api/story/stage", nil, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Stage, nil
}

// RecordExport POST /api/library
func (p *HTTPPipeline) RecordExport(ctx context.Context, req dto.RecordExportRequest) (*dto.LibraryEntry, error) {
	var resp dto.RecordExportResponse
	if err := p.do(ctx, http.MethodPost, "/api/library", nil, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Entry, nil
}

// Library GET /api/library
func (p *HTTPPipeline) Library(ctx context.Context, limit int) ([]dto.LibraryEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp dto.LibraryListResponse
	if err := p.do(ctx, http.MethodGet, "/api/library", q, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// MOTD GET /api/motd，未发布时返回 nil
func (p *HTTPPipeline) MOTD(ctx context.Context) (*dto.MOTD, error) {
	var resp dto.MOTDResponse
	if err := p.do(ctx, http.MethodGet, "/api/motd", nil, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.MOTD, nil
}

// Session GET /api/auth/session
func (p *HTTPPipeline) Session(ctx context.Context) (*entity.Session, error) {
	var resp entity.Session
	if err := p.do(ctx, http.MethodGet, "/api/auth/session", nil, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *HTTPPipeline) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) error {
	target := p.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e dto.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Code = e.Code
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
