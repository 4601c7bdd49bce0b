// Package domain defines the core interfaces and types for FraudLens.
package domain

import (
	"context"
	"time"
)

// Store defines the interface for scored-record persistence.
//
// The collection is ordered newest-first: Append places the record at the
// front, LoadAll returns the full collection in that order. Implementations
// must treat unreadable or corrupt persisted state as an empty collection,
// not as an error to the caller.
type Store interface {
	// Append adds a record to the front of the collection and persists it.
	Append(ctx context.Context, tx *Transaction) error

	// LoadAll returns the full collection, newest-first. A missing or
	// corrupt backing state yields an empty collection and a nil error.
	LoadAll(ctx context.Context) ([]*Transaction, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// StoreConfig holds configuration for store initialization.
type StoreConfig struct {
	// Driver is the storage driver: "file", "memory", "sqlite" or "postgres"
	Driver string

	// File driver: path of the JSON collection file
	FilePath string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings (SQL drivers)
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
