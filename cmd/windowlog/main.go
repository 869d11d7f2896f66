package main

import (
	"context"
	"log"

	"windowlog/internal/config"
	"windowlog/internal/db"
	"windowlog/internal/export"
	"windowlog/internal/logging"
	"windowlog/internal/photostore/local"
	"windowlog/internal/service"
	"windowlog/internal/store"
	"windowlog/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	measurementStore := store.NewMeasurementStore(database)
	photoStore := store.NewPhotoStore(database)

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	generator, err := export.NewGenerator()
	if err != nil {
		logger.Error("failed to initialize document generator", "error", err)
		return
	}

	measurementService := service.NewMeasurementService(
		measurementStore,
		photoStore,
		photoStg,
		generator,
		cfg.ExportPath,
		logger,
	)
	if count, err := measurementService.CountMeasurements(context.Background()); err == nil {
		logger.Info("database ready", "measurements", count)
	}

	server := web.NewServer(measurementService, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
