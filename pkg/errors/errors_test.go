package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCodeToHTTPStatus 测试错误分类到状态码的映射
func TestCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeNotConfigured, http.StatusServiceUnavailable},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeGenerationFailed, http.StatusBadGateway},
		{CodeStructuredOutput, http.StatusBadGateway},
		{CodeInsufficientTokens, http.StatusPaymentRequired},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.code, "x").HTTPStatus, string(tc.code))
	}
}

// TestIsCodeWalksChain 测试错误码在包装链中的识别
func TestIsCodeWalksChain(t *testing.T) {
	cfgErr := NotConfigured("api key missing")
	wrapped := Generation("synopsis failed", cfgErr)
	outer := fmt.Errorf("handler: %w", wrapped)

	assert.True(t, IsGeneration(outer))
	assert.True(t, IsConfiguration(outer))
	assert.False(t, IsConfiguration(Generation("empty", stderrors.New("boom"))))
	assert.False(t, IsCode(stderrors.New("plain"), CodeUnknown))
}

// TestAsAppError 测试普通错误的兜底包装
func TestAsAppError(t *testing.T) {
	plain := stderrors.New("boom")
	appErr := AsAppError(plain)
	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.ErrorIs(t, appErr, plain)

	v := Validation("age is required")
	assert.Same(t, v, AsAppError(fmt.Errorf("wrap: %w", v)))
}

// TestDescribe 测试带原因的错误描述
func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "plain", Describe(stderrors.New("plain")))
	assert.Equal(t, "title is required", Describe(Validation("title is required")))
	assert.Equal(t, "model call failed: quota exceeded",
		Describe(Wrap(stderrors.New("quota exceeded"), CodeLLMProviderError, "model call failed")))
}
