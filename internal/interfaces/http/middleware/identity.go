package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"fairybook-api/internal/domain/service"
	"fairybook-api/pkg/logger"
)

// SignatureHeader 生成请求的幂等签名
const SignatureHeader = "X-Generation-Signature"

// Identity 解析 Authorization 并注入会话；身份缺失或无效时按匿名继续
func Identity(sessions service.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		session, err := sessions.Session(ctx, bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			logger.Warn(ctx, "session lookup failed", "error", err.Error())
			c.Next()
			return
		}

		ctx = service.WithSession(ctx, session)
		if uid := session.UID(); uid != "" {
			c.Set("user_id", uid)
			ctx = logger.WithContext(ctx, logger.UserIDKey, uid)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
