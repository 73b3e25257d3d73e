//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

// 注入器按 wire.go 的 provider 集合手工展开，修改 wire.go 后执行 go generate 重新生成。
package wire

import (
	"context"

	"fairybook-api/internal/application/identity"
	"fairybook-api/internal/application/library"
	"fairybook-api/internal/application/story"
	"fairybook-api/internal/config"
	"fairybook-api/internal/infrastructure/llm"
	"fairybook-api/internal/interfaces/http/handler"
	"fairybook-api/internal/interfaces/http/router"
	"fairybook-api/internal/workflow/chain"
)

// Injectors from wire.go:

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	stores, cleanup, err := ProvideStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	healthHandler := ProvideHealthHandler(cfg, stores)
	llmUsageEventRepository := ProvideUsageRepository(stores)
	llmUsageRecorder := ProvideUsageRecorder(llmUsageEventRepository)
	einoFactory := llm.NewEinoFactory(cfg)
	limiter := llm.NewThrottle(cfg)
	retryPolicy := ProvideRetryPolicy(cfg)
	storyTextChain := chain.NewStoryTextChain(einoFactory, limiter, retryPolicy)
	geminiImageGenerator := llm.NewGeminiImageGenerator(cfg, llmUsageRecorder)
	storyImageChain := chain.NewStoryImageChain(geminiImageGenerator, limiter, retryPolicy)
	catalog, err := ProvideCatalog(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	textOptions := ProvideTextOptions(cfg)
	service := story.NewService(storyTextChain, storyImageChain, catalog, textOptions)
	tokenRepository := ProvideTokenRepository(stores)
	location := ProvideLocation(cfg)
	tokenService := ProvideTokenService(tokenRepository, cfg, location)
	storyHandler := ProvideStoryHandler(service, catalog, tokenService, cfg)
	motdRepository := ProvideMOTDRepository(stores)
	motdService := ProvideMOTDService(motdRepository, stores, cfg)
	motdHandler := handler.NewMOTDHandler(motdService, location)
	tokenHandler := handler.NewTokenHandler(tokenService)
	libraryRepository := ProvideLibraryRepository(stores)
	libraryService := library.NewService(libraryRepository)
	libraryHandler := handler.NewLibraryHandler(libraryService, location)
	sessionHandler := handler.NewSessionHandler(tokenService)
	handlers := router.Handlers{
		Health:  healthHandler,
		Story:   storyHandler,
		MOTD:    motdHandler,
		Token:   tokenHandler,
		Library: libraryHandler,
		Session: sessionHandler,
	}
	jwtManager := ProvideJWTManager(cfg)
	demoUserConfig := ProvideDemoUser(cfg)
	sessionProvider := identity.NewSessionProvider(jwtManager, demoUserConfig)
	deps := ProvideRouterDeps(sessionProvider, stores)
	routerRouter := router.New(cfg, handlers, deps)
	return routerRouter, func() {
		cleanup()
	}, nil
}

// InitializeBootstrap 仅初始化 PostgreSQL 与公告服务（用于 bootstrap）
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	service := ProvideBootstrapMOTDService(client, cfg)
	bootstrap := &Bootstrap{
		PgClient: client,
		MOTD:     service,
	}
	return bootstrap, func() {
		cleanup()
	}, nil
}
