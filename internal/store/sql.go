package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// SQLStore implements domain.Store using database/sql.
// Works with both SQLite and PostgreSQL drivers.
//
// Rows carry the same records as the file driver; newest-first ordering is
// reconstructed from the ingestion timestamp on read.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// newSQLStore opens the configured database and runs migrations.
func newSQLStore(cfg domain.StoreConfig) (*SQLStore, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := &SQLStore{
		db:     db,
		driver: cfg.Driver,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

func (s *SQLStore) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := s.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// Append inserts a scored record.
func (s *SQLStore) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return fmt.Errorf("%w: transaction with id is required", ErrInvalidInput)
	}

	factors, err := json.Marshal(tx.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to encode risk factors: %w", err)
	}

	query := `
		INSERT INTO transactions (
			id, amount, location, time_of_day, device,
			fraud_score, risk_factors, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, rebind(s.driver, query),
		tx.ID, tx.Amount, tx.Location, tx.TimeOfDay, tx.Device,
		tx.FraudScore, string(factors), tx.Timestamp,
	)
	return err
}

// LoadAll returns the full collection, newest-first.
func (s *SQLStore) LoadAll(ctx context.Context) ([]*domain.Transaction, error) {
	query := `
		SELECT id, amount, location, time_of_day, device,
		       fraud_score, risk_factors, timestamp
		FROM transactions
		ORDER BY timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var factors string

		if err := rows.Scan(
			&tx.ID, &tx.Amount, &tx.Location, &tx.TimeOfDay, &tx.Device,
			&tx.FraudScore, &factors, &tx.Timestamp,
		); err != nil {
			return nil, err
		}

		if factors != "" {
			json.Unmarshal([]byte(factors), &tx.RiskFactors)
		}

		records = append(records, &tx)
	}

	return records, rows.Err()
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
