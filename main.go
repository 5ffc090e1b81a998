package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/adapter/openfoodfacts"
	"github.com/nutriai/nutriai/internal/config"
	"github.com/nutriai/nutriai/internal/kb"
	"github.com/nutriai/nutriai/internal/repository"
	"github.com/nutriai/nutriai/internal/service"
	transport "github.com/nutriai/nutriai/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting nutriai",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Bool("mock_mode", config.MockMode()))

	// Initialize store
	var store repository.Store
	if cfg.DatabaseURL != "" {
		store, err = repository.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to initialize store", zap.Error(err))
		}
		logger.Info("Using SQLite session store", zap.String("dsn", cfg.DatabaseURL))
	} else {
		store = repository.NewMemoryStore()
		logger.Info("Using in-memory session store")
	}
	defer store.Close()

	// Initialize LLM client
	ctx := context.Background()
	llmClient, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}

	// Initialize Open Food Facts client
	offClient := openfoodfacts.NewClient(cfg.OFFBaseURL, cfg.OFFTimeout, cfg.OFFCacheTTL, logger)

	// Load ingredient knowledge base
	knowledgeBase, err := kb.Load(cfg.KBPath)
	if err != nil {
		logger.Warn("Failed to load ingredient KB, continuing without it",
			zap.String("path", cfg.KBPath), zap.Error(err))
		knowledgeBase = kb.New(nil)
	} else {
		logger.Info("Loaded ingredient KB", zap.Int("entries", knowledgeBase.Len()))
	}

	// Initialize service
	svc := service.New(store, llmClient, offClient, knowledgeBase, cfg, logger)

	// Create Echo server
	server := transport.NewServer(svc)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down nutriai...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("nutriai stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
