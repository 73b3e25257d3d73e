// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeNotFound           ErrorCode = "1004"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证 (2xxx)
	CodeTokenInvalid ErrorCode = "2002"

	// 生成额度 (3xxx)
	CodeInsufficientTokens ErrorCode = "3001"

	// 生成流程 (4xxx)
	CodeGenerationFailed ErrorCode = "4001"
	CodeStructuredOutput ErrorCode = "4002"
	CodeNotConfigured    ErrorCode = "4003"

	// 外部服务错误 (5xxx)
	CodeDatabaseError    ErrorCode = "5001"
	CodeCacheError       ErrorCode = "5002"
	CodeLLMProviderError ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Newf 创建带格式化消息的应用错误
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenInvalid:
		return http.StatusUnauthorized
	case CodeInsufficientTokens:
		return http.StatusPaymentRequired
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeNotConfigured:
		return http.StatusServiceUnavailable
	case CodeGenerationFailed, CodeStructuredOutput, CodeLLMProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")
	ErrTokenInvalid       = New(CodeTokenInvalid, "token invalid")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 判断错误链中是否存在指定错误码
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// IsConfiguration 是否为配置缺失类错误（不重试、不发起调用）
func IsConfiguration(err error) bool {
	return IsCode(err, CodeNotConfigured)
}

// IsGeneration 是否为上游生成失败类错误
func IsGeneration(err error) bool {
	return IsCode(err, CodeGenerationFailed) ||
		IsCode(err, CodeStructuredOutput) ||
		IsCode(err, CodeLLMProviderError)
}

// Validation 校验失败，消息指明缺失字段
func Validation(message string) *AppError {
	return New(CodeInvalidParam, message)
}

// NotConfigured 上游凭证/模型未配置
func NotConfigured(message string) *AppError {
	return New(CodeNotConfigured, message)
}

// Generation 上游调用失败或返回为空
func Generation(message string, err error) *AppError {
	return Wrap(err, CodeGenerationFailed, message)
}

// Describe 返回错误消息，带底层原因时一并附上
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Err != nil {
		return appErr.Message + ": " + appErr.Err.Error()
	}
	return appErr.Message
}
