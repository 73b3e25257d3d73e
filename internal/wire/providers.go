package wire

import (
	"context"
	"fmt"
	"time"

	"fairybook-api/internal/application/catalog"
	"fairybook-api/internal/application/motd"
	"fairybook-api/internal/application/quota"
	"fairybook-api/internal/application/story"
	"fairybook-api/internal/config"
	"fairybook-api/internal/domain/repository"
	"fairybook-api/internal/domain/service"
	"fairybook-api/internal/infrastructure/persistence/memory"
	"fairybook-api/internal/infrastructure/persistence/postgres"
	"fairybook-api/internal/infrastructure/persistence/redis"
	"fairybook-api/internal/interfaces/http/handler"
	"fairybook-api/internal/interfaces/http/middleware"
	"fairybook-api/internal/interfaces/http/router"
	einoobs "fairybook-api/internal/observability/eino"
	wfmodel "fairybook-api/internal/workflow/model"
	wfnode "fairybook-api/internal/workflow/node"
	"fairybook-api/pkg/logger"
	"fairybook-api/pkg/utils"
)

// usageBufferSize 内存后端保留的调用流水条数
const usageBufferSize = 1000

// Stores 按 storage.* 选出的存储实现
type Stores struct {
	MOTD     repository.MOTDRepository
	Library  repository.LibraryRepository
	Tokens   repository.TokenRepository
	Usage    repository.LLMUsageEventRepository
	Cache    motd.Cache
	Limiter  middleware.RateLimiter
	LimitKey middleware.KeyFunc
	Checks   map[string]handler.HealthChecker
}

// ProvideStores 只连接配置用到的后端，其余使用内存实现
func ProvideStores(ctx context.Context, cfg *config.Config) (*Stores, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	st := &Stores{
		MOTD:    memory.NewMOTDRepository(memory.SeedMOTD()),
		Library: memory.NewLibraryRepository(memory.SeedLibrary()),
		Tokens:  memory.NewTokenRepository(memory.SeedTokenStatus()),
		Usage:   memory.NewLLMUsageEventRepository(usageBufferSize),
		Cache:   memory.NewCache(cfg.Cache.MOTDTTL, time.Minute),
		Limiter: memory.NewRateLimiter(),
		Checks:  map[string]handler.HealthChecker{},
	}

	s := cfg.Storage
	if s.Documents == config.BackendPostgres || s.Tokens == config.BackendPostgres {
		pg, err := postgres.NewClient(&cfg.Database.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		cleanups = append(cleanups, func() { _ = pg.Close() })
		st.Checks["postgres"] = pg

		if s.Documents == config.BackendPostgres {
			st.MOTD = postgres.NewMOTDRepository(pg)
			st.Library = postgres.NewLibraryRepository(pg)
			st.Usage = postgres.NewLLMUsageEventRepository(pg)
		}
		if s.Tokens == config.BackendPostgres {
			st.Tokens = postgres.NewTokenRepository(pg)
		}
	}

	if s.Tokens == config.BackendRedis || s.Cache == config.BackendRedis {
		rc, err := redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		cleanups = append(cleanups, func() { _ = rc.Close() })
		st.Checks["redis"] = rc

		if s.Tokens == config.BackendRedis {
			st.Tokens = redis.NewTokenRepository(rc)
		}
		if s.Cache == config.BackendRedis {
			st.Cache = redis.NewCache(rc)
			st.Limiter = redis.NewRateLimiter(rc)
			st.LimitKey = redis.BuildRateLimitKey
		}
	}

	logger.Info(ctx, "storage configured",
		"documents", s.Documents,
		"tokens", s.Tokens,
		"cache", s.Cache,
	)
	return st, cleanup, nil
}

func ProvideMOTDRepository(st *Stores) repository.MOTDRepository       { return st.MOTD }
func ProvideLibraryRepository(st *Stores) repository.LibraryRepository { return st.Library }
func ProvideTokenRepository(st *Stores) repository.TokenRepository     { return st.Tokens }
func ProvideUsageRepository(st *Stores) repository.LLMUsageEventRepository {
	return st.Usage
}

// ProvideLocation 额度与展示时间所用时区
func ProvideLocation(cfg *config.Config) *time.Location {
	return quota.LoadLocation(cfg.Tokens.Timezone)
}

func ProvideMOTDService(repo repository.MOTDRepository, st *Stores, cfg *config.Config) *motd.Service {
	return motd.NewService(repo, st.Cache, cfg.Cache.MOTDTTL)
}

func ProvideTokenService(repo repository.TokenRepository, cfg *config.Config, loc *time.Location) *quota.TokenService {
	return quota.NewTokenService(repo, quota.Options{
		Initial:  cfg.Tokens.Initial,
		AutoCap:  cfg.Tokens.AutoCap,
		Location: loc,
	})
}

// ProvideUsageRecorder 同时注册 eino 全局回调
func ProvideUsageRecorder(repo repository.LLMUsageEventRepository) service.LLMUsageRecorder {
	recorder := quota.NewLLMUsageRecorder(repo)
	einoobs.Init(recorder)
	return recorder
}

func ProvideCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		return nil, err
	}
	types, cards, styles := cat.Size()
	logger.Info(ctx, "catalog loaded", "types", types, "cards", cards, "styles", styles)
	return cat, nil
}

func ProvideRetryPolicy(cfg *config.Config) wfnode.RetryPolicy {
	unit := cfg.Generation.BackoffUnit
	if unit <= 0 {
		unit = 250 * time.Millisecond
	}
	return wfnode.NewRetryPolicy(cfg.Generation.MaxAttempts, unit)
}

// ProvideTextOptions 默认文本模型参数，由工厂配置补全
func ProvideTextOptions(cfg *config.Config) wfmodel.TextOptions {
	name, provider := cfg.TextProvider()
	return wfmodel.TextOptions{Provider: name, Model: provider.Model}
}

func ProvideStoryHandler(stories *story.Service, cat *catalog.Catalog, tokens *quota.TokenService, cfg *config.Config) *handler.StoryHandler {
	return handler.NewStoryHandler(stories, cat, tokens, cfg.Tokens.Enforce)
}

func ProvideHealthHandler(cfg *config.Config, st *Stores) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, st.Checks)
}

func ProvideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
}

func ProvideDemoUser(cfg *config.Config) config.DemoUserConfig {
	return cfg.Security.DemoUser
}

func ProvideRouterDeps(sessions service.SessionProvider, st *Stores) router.Deps {
	return router.Deps{
		Sessions: sessions,
		Limiter:  st.Limiter,
		LimitKey: st.LimitKey,
	}
}
