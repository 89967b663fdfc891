package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	bharatairoot "github.com/bharat-ai/bharatai"
	"github.com/bharat-ai/bharatai/internal/alert"
	"github.com/bharat-ai/bharatai/internal/config"
	"github.com/bharat-ai/bharatai/internal/repository"
	"github.com/bharat-ai/bharatai/internal/server"
	"github.com/bharat-ai/bharatai/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env when present (local development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(bharatairoot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	users := repository.NewUserRepository(pool)
	chats := repository.NewChatRepository(pool)
	subs := repository.NewSubscriptionRepository(pool)

	// Ops alert sink
	alerts := alert.NewTelegram(cfg.AlertBotToken, cfg.AlertChatID, logger)

	// Services
	models, err := service.LoadModelCatalog(cfg.ImageModelsPath)
	if err != nil {
		slog.Error("failed to load image model catalog", "error", err)
		os.Exit(1)
	}
	assistant := service.NewAssistantService(cfg.WebhookURL, cfg.WebhookSecret)
	uploader := service.NewUploaderService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	imageGen := service.NewImageGenService(cfg.CloudflareAccountID, cfg.CloudflareAPIToken, uploader, models)
	push := service.NewPushService(subs, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDEmail, logger)
	chatService := service.NewChatService(chats, users, assistant, uploader, alerts, logger)

	// HTTP handler
	h := server.New(server.Deps{
		Cfg:      cfg,
		Chats:    chatService,
		ImageGen: imageGen,
		Uploader: uploader,
		Push:     push,
		Models:   models,
		Users:    users,
		Subs:     subs,
		Alerts:   alerts,
		Logger:   logger,
	})

	if err := server.Run(ctx, cfg, h.Routes()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}
