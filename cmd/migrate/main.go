package main

import (
	"context"
	"flag"
	"os"

	"creditrisk/adapters/db/postgres/migrations"
	"creditrisk/internal/logging"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()
	logger := logging.NewDefault()

	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	flag.Parse()

	if *databaseURL == "" {
		logger.Error("Usage: migrate -database-url <url> (or set DATABASE_URL)")
		os.Exit(2)
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", *databaseURL)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	applied, err := migrations.NewMigrator(db.DB, logger).Up(ctx)
	if err != nil {
		logger.Error("Migration failed: %v", err)
		db.Close()
		os.Exit(1)
	}
	logger.Info("Migrations complete: %d applied", len(applied))
}
