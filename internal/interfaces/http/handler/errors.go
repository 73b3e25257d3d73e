package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fairybook-api/internal/interfaces/http/dto"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/logger"
)

// respondError 按错误码映射状态码。
// 502 带上游原因，500 只返回通用消息并记录完整错误。
func respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if !stderrors.As(err, &appErr) || appErr.HTTPStatus == http.StatusInternalServerError || appErr.HTTPStatus == 0 {
		logger.Error(ctx, "request failed", err, "path", c.FullPath())
		dto.Error(c, http.StatusInternalServerError, string(apperrors.CodeInternalError), "internal server error")
		return
	}

	message := appErr.Message
	if appErr.HTTPStatus == http.StatusBadGateway {
		message = apperrors.Describe(appErr)
	}
	dto.Error(c, appErr.HTTPStatus, string(appErr.Code), message)
}
