// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fairybook-api/internal/config"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/interfaces/http/handler"
	"fairybook-api/internal/interfaces/http/middleware"
)

// Handlers 全部处理器
type Handlers struct {
	Health  *handler.HealthHandler
	Story   *handler.StoryHandler
	MOTD    *handler.MOTDHandler
	Token   *handler.TokenHandler
	Library *handler.LibraryHandler
	Session *handler.SessionHandler
}

// Deps 中间件依赖
type Deps struct {
	Sessions service.SessionProvider
	Limiter  middleware.RateLimiter
	LimitKey middleware.KeyFunc
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	deps     Deps
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, deps Deps) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		deps:     deps,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api", middleware.Identity(r.deps.Sessions))
	RegisterAPIRoutes(api, r.handlers,
		middleware.RateLimit(r.cfg.Security.RateLimit, r.deps.Limiter, r.deps.LimitKey))
}
