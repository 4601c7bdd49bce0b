package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fraudlens/fraudlens/internal/alerts"
	"github.com/fraudlens/fraudlens/internal/demo"
	"github.com/fraudlens/fraudlens/internal/domain"
	"github.com/fraudlens/fraudlens/internal/ingest"
	"github.com/fraudlens/fraudlens/internal/query"
)

// collectionCacheTTL bounds staleness if an append's invalidation is lost
// (e.g. another process wrote the file).
const collectionCacheTTL = time.Minute

// Handler holds dependencies for API handlers.
type Handler struct {
	store   domain.Store
	cache   domain.Cache
	svc     *ingest.Service
	demo    *demo.Generator
	watcher *alerts.Watcher
	version string
}

// NewHandler creates a new API handler.
func NewHandler(store domain.Store, cache domain.Cache, svc *ingest.Service, gen *demo.Generator, watcher *alerts.Watcher, version string) *Handler {
	return &Handler{
		store:   store,
		cache:   cache,
		svc:     svc,
		demo:    gen,
		watcher: watcher,
		version: version,
	}
}

// Predict handles POST /predict: validate, score, persist, respond with the
// scored record.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.TransactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	tx, err := h.svc.Ingest(ctx, &req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": verr.Error(),
			})
			return
		}
		slog.Error("ingestion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// RecentTransactions handles GET /recent-transactions: a sorted page of the
// collection, with paging metadata.
func (h *Handler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.collection(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load transactions",
		})
		return
	}

	// Empty store: serve the synthetic set so the dashboard is never blank
	if len(records) == 0 && h.demo != nil {
		records = h.demo.Transactions(demo.ListingCount)
	}

	opts := query.Options{
		Page:          intParam(r, "page"),
		PageSize:      intParam(r, "pageSize"),
		SortBy:        r.URL.Query().Get("sortBy"),
		SortDirection: r.URL.Query().Get("sortDirection"),
	}

	writeJSON(w, http.StatusOK, query.Apply(records, opts))
}

// VisualizationData handles GET /visualization-data: the full collection,
// unpaginated, for chart aggregation.
func (h *Handler) VisualizationData(w http.ResponseWriter, r *http.Request) {
	records, err := h.collection(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load transactions",
		})
		return
	}

	if len(records) == 0 && h.demo != nil {
		records = h.demo.Transactions(demo.VisualizationCount)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": records,
		"total":        len(records),
	})
}

// Alerts handles GET /alerts: recent high-risk records, newest first.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	recent := []*domain.Transaction{}
	if h.watcher != nil {
		recent = h.watcher.Recent()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": recent,
		"count":  len(recent),
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// collection returns the full stored collection, memoized through the cache.
// Cache failures fall through to the store; only store read errors surface.
func (h *Handler) collection(r *http.Request) ([]*domain.Transaction, error) {
	ctx := r.Context()

	if h.cache != nil {
		if data, err := h.cache.Get(ctx, domain.CollectionCacheKey); err == nil && data != nil {
			var records []*domain.Transaction
			uerr := json.Unmarshal(data, &records)
			if uerr == nil {
				return records, nil
			}
			slog.Warn("discarding undecodable cached collection", "error", uerr)
		}
	}

	records, err := h.store.LoadAll(ctx)
	if err != nil {
		slog.Error("failed to load collection", "error", err)
		return nil, err
	}

	if h.cache != nil && len(records) > 0 {
		if data, err := json.Marshal(records); err == nil {
			if err := h.cache.Set(ctx, domain.CollectionCacheKey, data, collectionCacheTTL); err != nil {
				slog.Warn("failed to cache collection", "error", err)
			}
		}
	}

	return records, nil
}

// intParam parses an integer query parameter, returning 0 (meaning "use the
// default") when absent or malformed.
func intParam(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
