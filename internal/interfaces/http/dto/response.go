// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// OK 返回 200，响应体即 data 本身
func OK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, data)
}

// Created 返回 201
func Created[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, data)
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, code string, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{
		Error:   message,
		Code:    code,
		TraceID: c.GetString("trace_id"),
	})
}

// BadRequest 返回 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "1001", message)
}
