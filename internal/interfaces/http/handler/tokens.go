package handler

import (
	"github.com/gin-gonic/gin"

	"fairybook-api/internal/application/quota"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/interfaces/http/dto"
)

// TokenHandler 生成额度
type TokenHandler struct {
	tokens *quota.TokenService
}

func NewTokenHandler(tokens *quota.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Get 只读返回当前用户额度，尚未同步过或匿名时返回 null
// @Summary 生成额度
// @Tags Tokens
// @Produce json
// @Success 200 {object} dto.TokenStatusResponse
// @Router /api/tokens [get]
func (h *TokenHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	uid := service.SessionFromContext(ctx).UID()
	if uid == "" {
		dto.OK(c, dto.TokenStatusResponse{})
		return
	}

	st, err := h.tokens.Status(ctx, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, dto.TokenStatusResponse{Status: st})
}
