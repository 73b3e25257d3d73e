package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"fairybook-api/internal/application/catalog"
	"fairybook-api/internal/application/quota"
	"fairybook-api/internal/application/story"
	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/interfaces/http/dto"
	"fairybook-api/internal/interfaces/http/middleware"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/logger"
)

// StoryHandler 目录与生成流程
type StoryHandler struct {
	stories *story.Service
	catalog *catalog.Catalog
	tokens  *quota.TokenService
	// enforce 开启时生成梗概前扣减一个额度，生成失败归还
	enforce bool
}

// NewStoryHandler tokens 为 nil 时不扣减额度
func NewStoryHandler(stories *story.Service, cat *catalog.Catalog, tokens *quota.TokenService, enforce bool) *StoryHandler {
	return &StoryHandler{
		stories: stories,
		catalog: cat,
		tokens:  tokens,
		enforce: enforce && tokens != nil,
	}
}

// ListTypes 随机抽取故事类型
// @Summary 故事类型
// @Tags Story
// @Produce json
// @Param count query int false "数量" default(8)
// @Success 200 {object} dto.StoryTypesResponse
// @Router /api/story/types [get]
func (h *StoryHandler) ListTypes(c *gin.Context) {
	q := dto.BindCatalogQuery(c)
	dto.OK(c, dto.StoryTypesResponse{StoryTypes: h.catalog.StoryTypes(q.Count)})
}

// ListCards 随机抽取故事卡片，stage 无匹配时从全部卡片中抽取
// @Summary 故事卡片
// @Tags Story
// @Produce json
// @Param count query int false "数量" default(4)
// @Param stage query string false "阶段"
// @Success 200 {object} dto.StoryCardsResponse
// @Router /api/story/cards [get]
func (h *StoryHandler) ListCards(c *gin.Context) {
	q := dto.BindCatalogQuery(c)
	dto.OK(c, dto.StoryCardsResponse{Cards: h.catalog.StoryCards(q.Count, q.Stage)})
}

// Generate 生成梗概、主角与标题
// @Summary 生成故事概要
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.GenerateStoryRequest true "生成参数"
// @Success 200 {object} dto.GenerateStoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/story/generate [post]
func (h *StoryHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	in := req.ToInput()
	if err := story.ValidateGenerate(in); err != nil {
		respondError(c, err)
		return
	}
	charge, err := h.consumeToken(ctx, c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.stories.Generate(ctx, in)
	if err != nil {
		h.refundToken(ctx, charge)
		respondError(c, err)
		return
	}
	dto.OK(c, dto.NewGenerateStoryResponse(result))
}

// GenerateImages 生成角色设定图与封面
// @Summary 生成角色图与封面
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.GenerateImagesRequest true "生成参数"
// @Success 200 {object} dto.GenerateImagesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/story/images [post]
func (h *StoryHandler) GenerateImages(c *gin.Context) {
	var req dto.GenerateImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.stories.Images(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, dto.GenerateImagesResponse{Character: result.Character, Cover: result.Cover})
}

// GenerateStage 生成单个阶段的正文与可选插画
// @Summary 生成阶段
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.GenerateStageRequest true "生成参数"
// @Success 200 {object} dto.GenerateStageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/story/stage [post]
func (h *StoryHandler) GenerateStage(c *gin.Context) {
	var req dto.GenerateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.stories.Stage(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, dto.GenerateStageResponse{Stage: *result})
}

// tokenCharge 本次请求实际扣减的额度，用于生成失败时归还
type tokenCharge struct {
	uid       string
	signature string
}

// consumeToken 先按登录同步补充额度，再以签名扣减；同一签名重复提交不重复扣减。
// 未开启或签名重复时返回 nil charge。
func (h *StoryHandler) consumeToken(ctx context.Context, c *gin.Context) (*tokenCharge, error) {
	if !h.enforce {
		return nil, nil
	}
	uid := service.SessionFromContext(ctx).UID()
	if uid == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "sign in to use generation tokens")
	}
	if _, err := h.tokens.SyncOnLogin(ctx, uid); err != nil {
		return nil, err
	}

	signature := strings.TrimSpace(c.GetHeader(middleware.SignatureHeader))
	if signature == "" {
		signature = c.GetString(middleware.RequestIDKey)
	}
	outcome, err := h.tokens.Consume(ctx, uid, signature)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "generation token checked",
		"consumed", outcome.Consumed,
		"remaining", remainingTokens(outcome.Status),
	)
	if !outcome.Consumed || signature == "" {
		return nil, nil
	}
	return &tokenCharge{uid: uid, signature: signature}, nil
}

// refundToken 生成失败时归还额度，归还失败只记日志
func (h *StoryHandler) refundToken(ctx context.Context, charge *tokenCharge) {
	if charge == nil {
		return
	}
	outcome, err := h.tokens.Refund(context.WithoutCancel(ctx), charge.uid, charge.signature)
	if err != nil {
		logger.Error(ctx, "refund generation token failed", err)
		return
	}
	logger.Info(ctx, "generation token refunded",
		"refunded", outcome.Refunded,
		"remaining", remainingTokens(outcome.Status),
	)
}

func remainingTokens(st *entity.GenerationTokenStatus) int {
	if st == nil {
		return 0
	}
	return st.Tokens
}
