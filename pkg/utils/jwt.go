// Package utils 提供通用工具函数
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims JWT 声明结构
type Claims struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager JWT 管理器
type JWTManager struct {
	secret string
	issuer string
	now    func() time.Time
}

// NewJWTManager 创建 JWT 管理器
func NewJWTManager(secret, issuer string) *JWTManager {
	return &JWTManager{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
}

// Enabled 未配置密钥时不签发也不校验
func (m *JWTManager) Enabled() bool {
	return m != nil && m.secret != ""
}

// GenerateToken 签发用户 Token
func (m *JWTManager) GenerateToken(userID, displayName, email string, ttl time.Duration) (string, error) {
	if !m.Enabled() {
		return "", ErrInvalidToken
	}
	now := m.now()
	claims := Claims{
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// ParseToken 解析并验证 Token
func (m *JWTManager) ParseToken(tokenString string) (*Claims, error) {
	if !m.Enabled() {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secret), nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
