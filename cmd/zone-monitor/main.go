package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/04rishabhgupta/ST-Homer/internal/alerts"
	"github.com/04rishabhgupta/ST-Homer/internal/auth"
	"github.com/04rishabhgupta/ST-Homer/internal/client"
	"github.com/04rishabhgupta/ST-Homer/internal/config"
	"github.com/04rishabhgupta/ST-Homer/internal/database"
	"github.com/04rishabhgupta/ST-Homer/internal/feed"
	"github.com/04rishabhgupta/ST-Homer/internal/handler"
	"github.com/04rishabhgupta/ST-Homer/internal/logger"
	"github.com/04rishabhgupta/ST-Homer/internal/models"
	"github.com/04rishabhgupta/ST-Homer/internal/repository"
	"github.com/04rishabhgupta/ST-Homer/internal/router"
	"github.com/04rishabhgupta/ST-Homer/internal/service"
	"github.com/04rishabhgupta/ST-Homer/internal/tracker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	// Load .env if present, for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting zone monitor",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
	)

	// Initialize database
	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Initialize API client for the GPS backend
	apiClient := client.NewAPIClient(
		cfg.Backend.BaseURL,
		cfg.Backend.APIKey,
		time.Duration(cfg.Backend.Timeout)*time.Second,
		log.Logger,
	)

	// Repositories
	fenceRepo := repository.NewFenceRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)

	// Seed the settings store from config on first boot. Values tuned through
	// the dashboard afterwards take precedence.
	bootSettings := models.DefaultSettings()
	bootSettings.AutoRefreshIntervalSeconds = cfg.Monitor.RefreshIntervalSeconds
	bootSettings.OutOfZoneAlertDelaySeconds = cfg.Monitor.AlertDelaySeconds
	bootSettings.DeviceTimeoutSeconds = cfg.Monitor.DeviceTimeoutSeconds
	if err := settingsRepo.Seed(bootSettings); err != nil {
		log.Fatal("Failed to seed settings", zap.Error(err))
	}

	// Feed cache and violation tracking
	cache := feed.NewCache(cfg.Monitor.HistoryPerDevice, log.Logger)
	violations := tracker.NewViolationTracker(cfg.Monitor.AlertOnSilentDevice, log.Logger)
	history := alerts.NewHistory(alerts.NewLogNotifier(log.Logger), log.Logger)

	// Services
	fenceService := service.NewFenceService(fenceRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo)
	monitorService := service.NewMonitorService(
		apiClient,
		cache,
		fenceRepo,
		assignmentRepo,
		settingsRepo,
		violations,
		history,
		time.Duration(cfg.Backend.Timeout)*time.Second,
		log.Logger,
	)

	// Auth
	authService := auth.NewService(cfg.Auth, log.Logger)

	// HTTP surface
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log.Logger),
		Fence:      handler.NewFenceHandler(fenceService, log.Logger),
		Assignment: handler.NewAssignmentHandler(assignmentService, log.Logger),
		Alert:      handler.NewAlertHandler(history, monitorService, log.Logger),
		Device:     handler.NewDeviceHandler(monitorService, apiClient, log.Logger),
		Settings:   handler.NewSettingsHandler(settingsRepo, log.Logger),
		Monitor:    handler.NewMonitorHandler(monitorService, log.Logger),
	}
	httpHandler := router.New(handlers, authService, log.Logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Start the compliance loop
	monitorService.Start()

	log.Info("Zone monitor started successfully",
		zap.String("backend_url", cfg.Backend.BaseURL),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	log.Info("Shutting down zone monitor...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Stop the monitor loop (synchronous, with timeout)
	done := make(chan struct{})
	go func() {
		monitorService.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Monitor service stopped successfully")
	case <-time.After(3 * time.Second):
		log.Warn("Shutdown timeout reached, forcing immediate exit")
		os.Exit(1)
	}

	log.Info("Zone monitor stopped")
}
