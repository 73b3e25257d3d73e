// Package identity 解析请求身份
package identity

import (
	"context"
	"errors"
	"strings"

	"fairybook-api/internal/config"
	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/service"
	"fairybook-api/pkg/utils"
)

const (
	msgAuthenticated = "Signed in."
	msgDemoUser      = "No token provided; using the configured demo user."
	msgAnonymous     = "Not signed in; story generation still works without an account."
	msgInvalidToken  = "The session token is invalid."
	msgExpiredToken  = "The session token has expired."
)

// SessionProvider Bearer JWT 优先，其次演示用户，否则匿名
type SessionProvider struct {
	jwt  *utils.JWTManager
	demo *entity.User
}

var _ service.SessionProvider = (*SessionProvider)(nil)

func NewSessionProvider(jwt *utils.JWTManager, demo config.DemoUserConfig) *SessionProvider {
	p := &SessionProvider{jwt: jwt}
	if uid := strings.TrimSpace(demo.UID); uid != "" {
		p.demo = &entity.User{
			UID:         uid,
			DisplayName: strings.TrimSpace(demo.DisplayName),
			Email:       strings.TrimSpace(demo.Email),
		}
	}
	return p
}

// Session 无效 Token 不报错，返回带说明的匿名会话
func (p *SessionProvider) Session(_ context.Context, bearer string) (*entity.Session, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer != "" && p.jwt.Enabled() {
		claims, err := p.jwt.ParseToken(bearer)
		if err == nil {
			return &entity.Session{
				Authenticated: true,
				User: &entity.User{
					UID:         claims.UserID,
					DisplayName: claims.DisplayName,
					Email:       claims.Email,
				},
				Message: msgAuthenticated,
			}, nil
		}
		msg := msgInvalidToken
		if errors.Is(err, utils.ErrExpiredToken) {
			msg = msgExpiredToken
		}
		return &entity.Session{Message: msg}, nil
	}

	if p.demo != nil {
		user := *p.demo
		return &entity.Session{Authenticated: true, User: &user, Message: msgDemoUser}, nil
	}
	return &entity.Session{Message: msgAnonymous}, nil
}
