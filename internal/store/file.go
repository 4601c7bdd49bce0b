package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// FileStore persists the collection as a single JSON array file,
// newest-first, the layout the dashboard prototype used. Every append
// rewrites the whole file.
//
// Appends are serialized through an in-process mutex, so concurrent requests
// within one server cannot lose records. A second process writing the same
// file still races it: last writer wins. Run one writer per file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store backed by the given path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = "./predictions.json"
	}
	return &FileStore{path: path}
}

// Append adds the record to the front of the collection and rewrites the
// file.
func (s *FileStore) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return fmt.Errorf("%w: transaction with id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	records = append([]*domain.Transaction{tx}, records...)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}

	return nil
}

// LoadAll returns the full collection, newest-first. A missing or corrupt
// file yields an empty collection, never an error.
func (s *FileStore) LoadAll(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// load reads and decodes the collection file. Caller holds the mutex.
func (s *FileStore) load() []*domain.Transaction {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read collection file, starting empty",
				"path", s.path,
				"error", err,
			)
		}
		return nil
	}

	var records []*domain.Transaction
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("collection file is corrupt, starting empty",
			"path", s.path,
			"error", err,
		)
		return nil
	}

	return records
}

// Ping checks that the store directory is writable.
func (s *FileStore) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("store directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store path parent %s is not a directory", dir)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}
