package service

import (
	"context"

	"fairybook-api/internal/domain/entity"
)

// SessionProvider 身份查询
type SessionProvider interface {
	// Session bearer 为 Authorization 头中的 Token，可能为空
	Session(ctx context.Context, bearer string) (*entity.Session, error)
}

type sessionCtxKey struct{}

// WithSession 注入当前请求的会话
func WithSession(ctx context.Context, s *entity.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext 未注入时返回匿名会话
func SessionFromContext(ctx context.Context) *entity.Session {
	if ctx != nil {
		if s, ok := ctx.Value(sessionCtxKey{}).(*entity.Session); ok && s != nil {
			return s
		}
	}
	return &entity.Session{}
}
