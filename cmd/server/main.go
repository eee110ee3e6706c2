package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chatline/config"
	"chatline/internal/api"
	"chatline/internal/assistant"
	"chatline/internal/auth"
	"chatline/internal/cache"
	"chatline/internal/database"
	"chatline/internal/message"
	"chatline/internal/user"
	"chatline/pkg/jwt"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	zapCfg := zap.NewProductionConfig()
	if *verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := db.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("connected to database")

	// Redis is optional; without it the persisted online flag is authoritative.
	var presence *cache.PresenceCache
	if cfg.RedisAddr != "" {
		presence, err = cache.NewPresenceCache(cfg.RedisAddr)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	tokens := jwt.NewJWT(cfg.JWTSecret, cfg.TokenTTL)

	var generator assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := assistant.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Fatal("failed to create gemini client", zap.Error(err))
		}
		generator = gen
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant relay disabled")
	}

	authService := auth.NewService(db.DB, tokens, presence)
	userService := user.NewService(db.DB, presence)
	messageService := message.NewService(db.DB, presence)

	server := api.NewServer(tokens, api.Handlers{
		Auth:      auth.NewHandler(authService, logger),
		Users:     user.NewHandler(userService, logger),
		Messages:  message.NewHandler(messageService, logger),
		Assistant: assistant.NewHandler(generator, logger),
	}, logger)

	if err := server.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
