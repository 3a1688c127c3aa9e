package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/adyen/shopcheck/internal/config"
)

// Open establishes a connection to the results database
func Open(pgConfig *config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", pgConfig.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A run writes a handful of rows sequentially
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
