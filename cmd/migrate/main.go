// Package main applies the embedded schema migrations without starting the API,
// for release jobs that migrate before rolling out new instances.
package main

import (
	"flag"
	"os"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/NomadCrew/nomad-split-backend/db"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/joho/godotenv"
)

func main() {
	dbURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL; defaults to the DATABASE_* settings")
	flag.Parse()

	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	url := *dbURL
	if url == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.Storage.Driver == config.StorageDriverMongo {
			log.Info("Storage driver is mongo, nothing to migrate")
			return
		}
		url = cfg.Database.URL()
	}

	if err := db.RunMigrations(url); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
