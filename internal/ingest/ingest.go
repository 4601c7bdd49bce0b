// Package ingest orchestrates transaction scoring and persistence.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fraudlens/fraudlens/internal/domain"
	"github.com/google/uuid"
)

// Service receives transaction requests, scores them, and persists the
// resulting records. Scoring prefers the remote model; any remote failure
// falls back to the local heuristic and is never surfaced to the caller.
type Service struct {
	store    domain.Store
	remote   domain.Scorer
	fallback domain.Scorer
	bus      domain.EventBus
	cache    domain.Cache
}

// NewService creates an ingestion service. The fallback scorer and store are
// required; remote, bus, and cache may be nil.
func NewService(store domain.Store, remote, fallback domain.Scorer, bus domain.EventBus, cache domain.Cache) *Service {
	return &Service{
		store:    store,
		remote:   remote,
		fallback: fallback,
		bus:      bus,
		cache:    cache,
	}
}

// Ingest validates the request, scores it, and appends the scored record.
//
// The only error callers see is *domain.ValidationError; a validation
// failure has no side effects. Persistence failures are logged but do not
// block the response: the caller still gets the computed record.
func (s *Service) Ingest(ctx context.Context, req *domain.TransactionRequest) (*domain.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	score, factors := s.score(ctx, req)

	tx := req.ToTransaction()
	tx.ID = uuid.New().String()
	tx.FraudScore = score
	tx.RiskFactors = factors
	tx.Timestamp = time.Now().UTC()

	if err := s.store.Append(ctx, tx); err != nil {
		// Best-effort durability: respond with the scored record anyway.
		slog.Error("failed to persist scored record",
			"id", tx.ID,
			"error", err,
		)
	} else if s.cache != nil {
		if err := s.cache.Delete(ctx, domain.CollectionCacheKey); err != nil {
			slog.Warn("failed to invalidate collection cache", "error", err)
		}
	}

	s.publish(ctx, tx)

	return tx, nil
}

// score runs the primary scorer and falls back to the heuristic on any
// failure. The heuristic is self-contained, so this never fails.
func (s *Service) score(ctx context.Context, req *domain.TransactionRequest) (int, map[string]string) {
	if s.remote != nil {
		score, factors, err := s.remote.Score(ctx, req)
		if err == nil {
			return score, factors
		}
		slog.Warn("remote scorer unavailable, using heuristic fallback", "error", err)
	}

	score, factors, _ := s.fallback.Score(ctx, req)
	return score, factors
}

// publish emits the scored record for downstream consumers (alerts watcher).
func (s *Service) publish(ctx context.Context, tx *domain.Transaction) {
	if s.bus == nil {
		return
	}

	payload, err := json.Marshal(tx)
	if err != nil {
		slog.Error("failed to marshal scored record for publish", "id", tx.ID, "error", err)
		return
	}

	if err := s.bus.Publish(ctx, domain.TopicTransactionScored, payload); err != nil {
		slog.Warn("failed to publish scored record", "id", tx.ID, "error", err)
	}
}
