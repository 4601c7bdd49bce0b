// Package scoring implements the local heuristic fraud scorer.
//
// The heuristic is the degraded-mode fallback used when the remote model
// service cannot be reached. It is a fixed point-scoring rule over the four
// transaction attributes plus a small random perturbation; it is not a model.
package scoring

import (
	"context"
	"math/rand/v2"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// noiseBound is the exclusive upper bound of the random perturbation added
// to each score. The fuzz is intentional, so repeated identical requests do
// not produce suspiciously identical scores.
const noiseBound = 10

// NoiseSource produces the bounded random perturbation added to each score.
type NoiseSource func() int

// Heuristic scores transactions with a deterministic point-scoring rule and
// a bounded random perturbation. It never fails.
type Heuristic struct {
	noise NoiseSource
}

// NewHeuristic creates a heuristic scorer using the shared random source.
func NewHeuristic() *Heuristic {
	return &Heuristic{
		noise: func() int { return rand.IntN(noiseBound) },
	}
}

// NewHeuristicWithNoise creates a heuristic scorer with an injected noise
// source. Tests pass a fixed source to make scores reproducible.
func NewHeuristicWithNoise(src NoiseSource) *Heuristic {
	return &Heuristic{noise: src}
}

// Score computes the fraud score and per-attribute risk labels for a
// request. The score is the deterministic bucket sum plus noise, clamped to
// [0, 100]. The error return exists only to satisfy domain.Scorer and is
// always nil.
func (h *Heuristic) Score(ctx context.Context, req *domain.TransactionRequest) (int, map[string]string, error) {
	score := baseScore(req) + h.noise()

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return score, RiskFactors(req), nil
}

// baseScore is the deterministic component of the heuristic: the sum of the
// four attribute bucket contributions, before noise and clamping.
func baseScore(req *domain.TransactionRequest) int {
	score := 0

	// Amount factor
	switch {
	case req.Amount > 50000:
		score += 40
	case req.Amount > 20000:
		score += 25
	case req.Amount > 5000:
		score += 10
	}

	// Location factor
	switch {
	case domain.HighRiskCitiesA[req.Location]:
		score += 15
	case domain.HighRiskCitiesB[req.Location]:
		score += 10
	}

	// Time factor
	switch req.TimeOfDay {
	case "Night", "Late Night":
		score += 30
	case "Evening":
		score += 15
	}

	// Device factor
	switch req.Device {
	case "Mobile Android":
		score += 15
	case "Tablet":
		score += 10
	}

	return score
}

// RiskFactors classifies each attribute on its own scale, independent of the
// aggregate score. Both city tiers map to Medium: any known high-activity
// city is Medium, everything else Low.
func RiskFactors(req *domain.TransactionRequest) map[string]string {
	factors := make(map[string]string, 4)

	switch {
	case req.Amount > 20000:
		factors["amount"] = domain.RiskHigh
	case req.Amount > 5000:
		factors["amount"] = domain.RiskMedium
	default:
		factors["amount"] = domain.RiskLow
	}

	if domain.HighRiskCitiesA[req.Location] || domain.HighRiskCitiesB[req.Location] {
		factors["location"] = domain.RiskMedium
	} else {
		factors["location"] = domain.RiskLow
	}

	switch req.TimeOfDay {
	case "Night", "Late Night":
		factors["time"] = domain.RiskHigh
	case "Evening":
		factors["time"] = domain.RiskMedium
	default:
		factors["time"] = domain.RiskLow
	}

	switch req.Device {
	case "Mobile Android", "Tablet":
		factors["device"] = domain.RiskMedium
	default:
		factors["device"] = domain.RiskLow
	}

	return factors
}
