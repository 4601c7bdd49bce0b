package domain

import "context"

// Scorer produces a fraud score in [0, 100] plus per-attribute risk labels
// for a transaction request.
//
// The ingestion service holds two scorers: the remote model client as the
// primary path and the local heuristic as the fallback. The heuristic never
// returns an error; the remote client returns one whenever the model service
// is unreachable or answers with anything other than a usable score.
type Scorer interface {
	Score(ctx context.Context, req *TransactionRequest) (int, map[string]string, error)
}

// ScorerConfig holds configuration for the remote model client.
type ScorerConfig struct {
	// ModelURL is the base URL of the external scoring service.
	ModelURL string

	// TimeoutSeconds bounds the round-trip to the model service so the
	// fallback path can kick in promptly.
	TimeoutSeconds int
}
