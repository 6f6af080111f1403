package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/revops/intake-service/internal/system/config"
	"github.com/revops/intake-service/internal/system/log"
	"github.com/revops/intake-service/internal/system/middleware"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	envErr := godotenv.Load()

	// Priority: CONFIG_PATH env var > repository/conf/deployment.yaml > cmd/server/repository/conf/deployment.yaml
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.GetLogger().WithError(err).Fatal("Failed to load configuration")
	}

	logger := log.Init(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Revenue Intake Server...")
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.WithError(envErr).Warn("Failed to read .env file")
	}

	logger.WithFields(logrus.Fields{
		"config_path":     configPath,
		"storage_backend": cfg.Storage.Backend,
		"log_level":       logger.GetLevel().String(),
	}).Info("Configuration loaded successfully")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(middleware.CORSOptions{
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	}))
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.AccessLog(logger))

	if err := registerServices(router, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Failed to initialize services")
	}

	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("Server is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	unregisterServices()

	logger.Info("Server exited gracefully")
}
