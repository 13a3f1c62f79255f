package main

import (
	"log"
	"log/slog"

	"polls-service/internal/adapters/database"
	"polls-service/internal/config"
	"polls-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Setup(cfg.SlogLevel(), false)

	slog.Info("Starting database migration...", "driver", cfg.Database.Driver)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	slog.Info("Running GORM auto-migration...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	slog.Info("Database migration completed successfully!")
}
