package store

// Schema definitions for the SQL store drivers.
// Compatible with both SQLite and PostgreSQL.

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    amount REAL NOT NULL,
    location TEXT NOT NULL,
    time_of_day TEXT NOT NULL,
    device TEXT NOT NULL,
    fraud_score INTEGER NOT NULL,
    risk_factors TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp);
CREATE INDEX IF NOT EXISTS idx_transactions_score ON transactions(fraud_score);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaTransactions,
	}
}
