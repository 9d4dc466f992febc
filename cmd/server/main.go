package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/motopark/api/internal/auth"
	"github.com/stwalsh4118/motopark/api/internal/config"
	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/handlers"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/repository"
	"github.com/stwalsh4118/motopark/api/internal/router"
	"github.com/stwalsh4118/motopark/api/internal/services"
	"github.com/stwalsh4118/motopark/api/internal/storage"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	log.Info("Starting Motorbike Parking API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
		log.Info("Database migrations applied", nil)
	}

	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize token service", err, nil)
	}

	files, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.MaxBytes())
	if err != nil {
		log.Fatal("Failed to initialize upload storage", err, map[string]interface{}{
			"dir": cfg.Upload.Dir,
		})
	}

	// Initialize repository and service layers
	users := repository.NewUserRepository(db)
	zones := repository.NewZoneRepository(db)
	reports := repository.NewReportRepository(db)

	authService := services.NewAuthService(users, tokens, log)
	parkingService := services.NewParkingService(zones, repository.NewSpatialIndex(db), log)
	reportService := services.NewReportService(
		repository.NewReportAggregator(db),
		reports,
		repository.NewImageRepository(db),
		files,
		log,
	)

	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.New(router.Deps{
		Config:   cfg,
		Log:      log,
		Verifier: tokens,
		Health:   handlers.NewHealthHandler(db, cfg.Server.Env),
		Auth:     handlers.NewAuthHandler(authService),
		Parking:  handlers.NewParkingHandler(parkingService),
		Reports:  handlers.NewReportHandler(reportService, cfg.Upload.MaxBytes()),
	})
	if err != nil {
		log.Fatal("Failed to build router", err, nil)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port":       cfg.Server.Port,
			"addr":       srv.Addr,
			"upload_dir": files.Dir(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
