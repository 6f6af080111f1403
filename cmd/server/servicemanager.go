package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/revops/intake-service/internal/attachment"
	"github.com/revops/intake-service/internal/intake"
	"github.com/revops/intake-service/internal/system/config"
	"github.com/revops/intake-service/internal/system/database"
	"github.com/revops/intake-service/internal/system/database/provider"
	"github.com/revops/intake-service/internal/tracker"
)

// Package-level reference for cleanup during shutdown
var db *database.DB

// registerServices wires the record store, tracker client and attachment sink
// into the intake module and registers its routes.
func registerServices(router *gin.Engine, cfg *config.Config, logger *logrus.Logger) error {
	store, err := newIntakeStore(cfg, logger)
	if err != nil {
		return err
	}

	trackerClient := tracker.NewClient(&cfg.Tracker, logger)
	logger.WithField("enabled", trackerClient.Configured()).Info("Issue tracker client initialized")

	var sink intake.AttachmentSink
	if cfg.Attachments.Enabled {
		s, err := attachment.NewSink(cfg.Attachments.Directory)
		if err != nil {
			return err
		}
		sink = s
		logger.WithField("directory", cfg.Attachments.Directory).Info("Attachment sink initialized")
	}

	intake.Initialize(router, store, trackerClient, sink, logger, cfg.Attachments.MaxUploadBytes)
	logger.Info("Intake module initialized")
	return nil
}

func newIntakeStore(cfg *config.Config, logger *logrus.Logger) (intake.IntakeStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendCSV:
		store, err := intake.NewCSVStore(afero.NewOsFs(), cfg.Storage.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open csv store: %w", err)
		}
		logger.WithField("path", cfg.Storage.CSVPath).Info("CSV record store initialized")
		return store, nil
	default:
		dbCfg := cfg.Database
		dbCfg.Type = cfg.Storage.Backend
		conn, err := database.Initialize(&dbCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.HealthCheck(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("database health check failed: %w", err)
		}

		db = conn
		logger.Info("Database connection established successfully")
		return intake.NewSQLStore(provider.NewDBClient(conn)), nil
	}
}

// unregisterServices releases resources held by the registered services.
func unregisterServices() {
	if db != nil {
		_ = db.Close()
	}
}
