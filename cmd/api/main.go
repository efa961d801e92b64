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

	"golang.org/x/sync/errgroup"

	"smartspend/internal/cache"
	"smartspend/internal/config"
	"smartspend/internal/database"
	"smartspend/internal/logger"
	"smartspend/internal/router"
	"smartspend/internal/validator"
)

// @title           smartspend API
// @version         1.0
// @description     smartspend is a personal expense tracker with currency-normalized dashboards, CSV export and a spending chatbot.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const (
	shutdownTimeout     = 10 * time.Second
	cacheSweepInterval  = time.Minute
	serverReadTimeout   = 15 * time.Second
	serverWriteTimeout  = 30 * time.Second
	serverHeaderTimeout = 5 * time.Second
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	rangeCache := cache.NewRangeCache(appConfig.CacheMaxEntries, appConfig.CacheTTL)

	engine := router.New(router.Options{
		DB:    dbManager.DB(),
		Cache: rangeCache,
		Ping:  dbManager.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadTimeout:       serverReadTimeout,
		ReadHeaderTimeout: serverHeaderTimeout,
		WriteTimeout:      serverWriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting smartspend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return rangeCache.Run(gctx, cacheSweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
