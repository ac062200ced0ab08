package main

import (
	"context"
	"flag"
	"log"

	"blocknote-be/internal/config"
	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/unitofwork"
	"blocknote-be/internal/service"
	"blocknote-be/pkg/database"

	"github.com/google/uuid"
)

// Maintenance command: prunes history records older than the retention
// window, across all owners by default or scoped to one via -user.
func main() {
	days := flag.Int("days", 0, "retention window in days (default from config)")
	userFlag := flag.String("user", "", "optional user id to scope the cleanup")
	flag.Parse()

	cfg := config.Load()

	if *days <= 0 {
		*days = cfg.History.RetentionDays
	}

	var userId *uuid.UUID
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("Error: invalid user id %q: %v", *userFlag, err)
		}
		userId = &parsed
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	retention := service.NewRetentionService(uowFactory, sysLogger)

	deleted, err := retention.CleanupOldHistory(context.Background(), *days, userId)
	if err != nil {
		log.Fatalf("Error: cleanup failed: %v", err)
	}

	log.Printf("Cleanup finished: %d history records deleted (older than %d days)", deleted, *days)
}
