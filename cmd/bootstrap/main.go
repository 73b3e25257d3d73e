package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"fairybook-api/internal/config"
	"fairybook-api/internal/infrastructure/persistence/memory"
	"fairybook-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting fairybook bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	boot, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移表结构
	fmt.Println("Running migrations...")
	if err := boot.PgClient.AutoMigrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// 4. 写入默认公告
	current, err := boot.MOTD.Current(ctx)
	if err != nil {
		log.Fatalf("failed to load motd: %v", err)
	}
	if current != nil {
		fmt.Printf("MOTD already exists (updated %s)\n", current.UpdatedAt.Format("2006-01-02 15:04"))
		fmt.Println("Bootstrap completed.")
		return
	}

	seed := memory.SeedMOTD()
	message := os.Getenv("BOOTSTRAP_MOTD_MESSAGE")
	if message == "" {
		message = seed.Message
	}
	updatedBy := os.Getenv("BOOTSTRAP_MOTD_UPDATED_BY")
	if updatedBy == "" {
		updatedBy = *seed.UpdatedBy
	}

	m, err := boot.MOTD.Publish(ctx, message, true, updatedBy)
	if err != nil {
		log.Fatalf("failed to publish motd: %v", err)
	}
	fmt.Printf("MOTD published, signature %s\n", m.Signature())
	fmt.Println("Bootstrap completed.")
}
