package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/internal/server"
	"github.com/sirosfoundation/go-site-router/pkg/config"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
	"github.com/sirosfoundation/go-site-router/pkg/logging"
)

var (
	configFile = flag.String("config", "phpconfig.json", "Path to configuration file (YAML or JSON)")
	version    = "dev"
	buildTime  = "unknown"
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	server.Version = version
	logger.Info("Starting site server",
		zap.String("version", version),
		zap.String("build_time", buildTime),
		zap.String("build_dir", cfg.Routing.BuildDir),
		zap.String("ssr_dir", cfg.Routing.SSRDir),
		zap.String("api_dir", cfg.Routing.APIDir),
		zap.Int("rewrites", len(cfg.Routing.Rewrites)),
	)

	siteRouter, err := server.NewSiteRouter(cfg.Routing, handler.NewTable(), logger)
	if err != nil {
		logger.Fatal("Failed to create router", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := server.NewManager(cfg, logger)
	mgr.AddProvider(server.NewOpsProvider(cfg, mgr.Metrics()))
	mgr.AddProvider(server.NewSiteProvider(siteRouter, logger))
	if err := mgr.Start(ctx); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := mgr.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
