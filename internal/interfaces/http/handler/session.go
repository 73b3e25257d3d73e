package handler

import (
	"github.com/gin-gonic/gin"

	"fairybook-api/internal/application/quota"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/interfaces/http/dto"
	"fairybook-api/pkg/logger"
)

// SessionHandler 会话查询，登录用户在此同步生成额度
type SessionHandler struct {
	tokens *quota.TokenService
}

// NewSessionHandler tokens 为 nil 时不同步额度
func NewSessionHandler(tokens *quota.TokenService) *SessionHandler {
	return &SessionHandler{tokens: tokens}
}

// Get 返回 Identity 中间件解析出的会话，同步失败不影响响应
// @Summary 当前会话
// @Tags Auth
// @Produce json
// @Success 200 {object} entity.Session
// @Router /api/auth/session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	sess := service.SessionFromContext(ctx)
	if uid := sess.UID(); uid != "" && h.tokens != nil {
		if res, err := h.tokens.SyncOnLogin(ctx, uid); err != nil {
			logger.Warn(ctx, "sync generation tokens failed", "error", err.Error())
		} else if res.Initialized || res.RefilledBy > 0 {
			logger.Info(ctx, "generation tokens synced",
				"initialized", res.Initialized,
				"refilled_by", res.RefilledBy,
			)
		}
	}
	dto.OK(c, sess)
}
