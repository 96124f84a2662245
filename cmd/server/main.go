package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/meal-max/backend/internal/battle"
	"github.com/Lixing-Zhang/meal-max/backend/internal/config"
	"github.com/Lixing-Zhang/meal-max/backend/internal/handlers"
	"github.com/Lixing-Zhang/meal-max/backend/internal/repository"
	"github.com/Lixing-Zhang/meal-max/backend/internal/repository/sqlite"
	"github.com/Lixing-Zhang/meal-max/backend/internal/service"
	"github.com/Lixing-Zhang/meal-max/backend/internal/telemetry"
	"github.com/Lixing-Zhang/meal-max/backend/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting meal max api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"storage_driver", cfg.Storage.Driver,
	)

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	// Initialize repository
	var mealRepo repository.MealRepository
	switch cfg.Storage.Driver {
	case "memory":
		mealRepo = repository.NewInMemoryMealRepository()
	default:
		store, err := sqlite.Open(cfg.Storage.DBPath)
		if err != nil {
			log.Error("failed to open meal store", "path", cfg.Storage.DBPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		mealRepo = store
	}

	// Initialize services
	mealService := service.NewMealService(mealRepo, cfg.Storage.SchemaScriptPath)

	random, err := battle.NewSeededSource(cfg.Battle.RandomSeed)
	if err != nil {
		log.Error("failed to seed random source", "error", err)
		os.Exit(1)
	}
	engine := battle.NewEngine(mealService, random, log)

	// Initialize handlers
	router := handlers.NewRouter(
		log,
		handlers.NewHealthHandler(mealService, log),
		handlers.NewMealHandler(mealService, log),
		handlers.NewBattleHandler(mealService, engine, log),
	)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("server failed to start", "error", err)
		exitCode = 1
	}

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		exitCode = 1
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error("failed to flush traces", "error", err)
	}

	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
	log.Info("server stopped gracefully")
}
