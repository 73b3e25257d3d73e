package wire

import (
	"time"

	"fairybook-api/internal/application/motd"
	"fairybook-api/internal/config"
	"fairybook-api/internal/infrastructure/persistence/memory"
	"fairybook-api/internal/infrastructure/persistence/postgres"
)

// Bootstrap 迁移与初始化数据所需的依赖
type Bootstrap struct {
	PgClient *postgres.Client
	MOTD     *motd.Service
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideBootstrapMOTDService 直写数据库，进程内缓存仅为满足接口
func ProvideBootstrapMOTDService(pg *postgres.Client, cfg *config.Config) *motd.Service {
	return motd.NewService(postgres.NewMOTDRepository(pg), memory.NewCache(time.Minute, time.Minute), cfg.Cache.MOTDTTL)
}
