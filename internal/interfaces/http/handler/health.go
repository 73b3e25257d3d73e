// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// HealthChecker 可被就绪检查探测的依赖
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version string
	checks  map[string]HealthChecker
}

// NewHealthHandler 只登记已配置的依赖；内存后端无需探测
func NewHealthHandler(version string, checks map[string]HealthChecker) *HealthHandler {
	registered := make(map[string]HealthChecker, len(checks))
	for name, c := range checks {
		if c != nil {
			registered[name] = c
		}
	}
	return &HealthHandler{version: version, checks: registered}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Ready 并发探测各存储，任一失败返回 503
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var mu sync.Mutex
	checks := make(map[string]*readinessCheck, len(h.checks))
	var g errgroup.Group
	for name, checker := range h.checks {
		g.Go(func() error {
			start := time.Now()
			err := checker.HealthCheck(ctx)
			res := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status = "error"
				res.Error = err.Error()
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return err
		})
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if err := g.Wait(); err != nil {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
