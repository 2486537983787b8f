package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"retail_backoffice/internal/adapter/mcp"
	"retail_backoffice/internal/infrastructure/backoffice"
	"retail_backoffice/internal/infrastructure/config"
	"retail_backoffice/internal/infrastructure/logger"
	"retail_backoffice/internal/usecase"

	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
)

// Serves the agent tools over stdio. Stdout carries the protocol, so logs go
// to stderr.
func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tools := usecase.NewToolsUseCase(backoffice.NewClient(cfg), cfg.ProductSearchLimit)
	log.Printf("[tools] serving stdio backoffice=%s", cfg.BackofficeBaseURL)
	if err := mcp.NewToolServer(tools).RunStdio(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Tool server stopped: %v", err)
	}
}
