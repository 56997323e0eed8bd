package db

import (
	"context"
	"database/sql"
	"fmt"
	"storefront-api/config"
	"storefront-api/logger"
	"time"

	_ "github.com/lib/pq"
)

// Connect opens the postgres pool and verifies it with a ping.
func Connect(cfg *config.Config) (*sql.DB, error) {
	logger.Log.WithField("connection", cfg.SafeDatabaseURL()).Info("Attempting to connect to the database")

	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		logger.Log.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, nil
}
