// Package main fairybook 终端向导，经 HTTP 调用 fairybook-api
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fairybook-api/internal/client"
	"fairybook-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("FAIRYBOOK_API_URL", "http://localhost:8080"), "fairybook-api base URL")
	token := flag.String("token", os.Getenv("FAIRYBOOK_TOKEN"), "bearer token for the signed-in user")
	logLevel := flag.String("log-level", envOr("FAIRYBOOK_LOG_LEVEL", "warn"), "log level")
	flag.Parse()

	logger.Init(*logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiURL, client.WithToken(*token))
	app := newApp(api, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error(ctx, "wizard exited", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
