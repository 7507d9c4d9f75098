package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a SQLite database, in memory when dsn says so.
func ConnectSQLite(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return db, nil
}

// Connect prefers Postgres when a DSN is configured and falls back to SQLite.
func Connect(postgresDSN, sqliteDSN string) (*gorm.DB, string, error) {
	if postgresDSN != "" {
		db, err := ConnectPostgres(postgresDSN)
		return db, "postgres", err
	}

	db, err := ConnectSQLite(sqliteDSN)
	return db, "sqlite", err
}
