package main

import (
	"fmt"
	"log"

	"credsped/internal/config"
	"credsped/internal/efd/layout"
	"credsped/internal/handler"
	"credsped/internal/port"
	"credsped/internal/repository/postgres"
	"credsped/internal/router"
	"credsped/internal/service"
	s3storage "credsped/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	analysisRepo := postgres.NewAnalysisRepo(db)

	// Initialize storage; an empty bucket disables artifact archival
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize services
	analysisSvc, err := service.NewAnalysisService(
		layout.Default(), &cfg.Parser, storage, cfg.S3.Bucket, analysisRepo,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis service: %w", err)
	}

	// Initialize handlers
	analysisH := handler.NewAnalysisHandler(analysisSvc, cfg.Parser.MaxFileSizeMB)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(analysisH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
