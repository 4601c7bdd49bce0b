// Package store provides persistence drivers for the scored transaction
// collection.
//
// All drivers share the Store contract: the collection is newest-first,
// Append is the only write, and unreadable state degrades to an empty
// collection instead of failing the caller.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fraudlens/fraudlens/internal/domain"
)

var ErrInvalidInput = errors.New("invalid input")

// New creates a new store based on configuration.
func New(cfg domain.StoreConfig) (domain.Store, error) {
	switch cfg.Driver {
	case "file":
		return NewFileStore(cfg.FilePath), nil
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "postgres":
		return newSQLStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// rebind converts ?-style placeholders to $n for PostgreSQL.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
