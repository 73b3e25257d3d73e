//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"
	"golang.org/x/time/rate"

	"fairybook-api/internal/application/catalog"
	"fairybook-api/internal/application/identity"
	"fairybook-api/internal/application/library"
	"fairybook-api/internal/application/story"
	"fairybook-api/internal/config"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/infrastructure/llm"
	"fairybook-api/internal/interfaces/http/handler"
	"fairybook-api/internal/interfaces/http/router"
	"fairybook-api/internal/workflow/chain"
	workflowport "fairybook-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StoreSet,
		LLMSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeBootstrap 仅初始化 PostgreSQL 与公告服务（用于 bootstrap）
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		ProvideBootstrapMOTDService,
		wire.Struct(new(Bootstrap), "*"),
	)
	return nil, nil, nil
}

// StoreSet 存储提供者集合
var StoreSet = wire.NewSet(
	ProvideStores,
	ProvideMOTDRepository,
	ProvideLibraryRepository,
	ProvideTokenRepository,
	ProvideUsageRepository,
)

// LLMSet 模型调用提供者集合
var LLMSet = wire.NewSet(
	ProvideUsageRecorder,
	llm.NewEinoFactory,
	llm.NewThrottle,
	llm.NewGeminiImageGenerator,
	ProvideRetryPolicy,
	ProvideTextOptions,
	chain.NewStoryTextChain,
	chain.NewStoryImageChain,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	wire.Bind(new(workflowport.Limiter), new(*rate.Limiter)),
	wire.Bind(new(workflowport.ImageGenerator), new(*llm.GeminiImageGenerator)),
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	ProvideCatalog,
	ProvideLocation,
	ProvideMOTDService,
	ProvideTokenService,
	library.NewService,
	story.NewService,
	ProvideJWTManager,
	ProvideDemoUser,
	identity.NewSessionProvider,
	wire.Bind(new(story.TextPipeline), new(*chain.StoryTextChain)),
	wire.Bind(new(story.ImagePipeline), new(*chain.StoryImageChain)),
	wire.Bind(new(story.StylePicker), new(*catalog.Catalog)),
	wire.Bind(new(service.SessionProvider), new(*identity.SessionProvider)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideStoryHandler,
	handler.NewMOTDHandler,
	handler.NewTokenHandler,
	handler.NewLibraryHandler,
	handler.NewSessionHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouterDeps,
	router.New,
)
