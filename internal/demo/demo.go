// Package demo generates synthetic scored records for the dashboard when no
// real data exists yet. The substitute set keeps the charts and tables
// populated; it is never persisted.
package demo

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fraudlens/fraudlens/internal/domain"
	"github.com/fraudlens/fraudlens/internal/scoring"
)

// Record counts the API serves when the store is empty, matching what the
// dashboard charts were designed around.
const (
	ListingCount       = 30
	VisualizationCount = 100
)

// Generator produces synthetic scored records. Safe for concurrent use: the
// listing and visualization handlers share one generator, and rand.Rand is
// not goroutine-safe on its own.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator seeded for reproducible output.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed)),
		now: time.Now,
	}
}

// Transactions generates n synthetic records spread over the last 30 days.
// Scores follow a 60/30/10 low/medium/high split so the charts look like
// production traffic rather than uniform noise.
func (g *Generator) Transactions(n int) []*domain.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := make([]*domain.Transaction, 0, n)
	now := g.now().UTC()

	for i := 0; i < n; i++ {
		req := &domain.TransactionRequest{
			Amount:    float64(g.rng.IntN(50000) + 1000),
			Location:  domain.KnownCities[g.rng.IntN(len(domain.KnownCities))],
			TimeOfDay: domain.DayPeriods[g.rng.IntN(len(domain.DayPeriods))],
			Device:    domain.DeviceCategories[g.rng.IntN(len(domain.DeviceCategories))],
		}

		var score int
		switch roll := g.rng.Float64(); {
		case roll < 0.6:
			score = g.rng.IntN(30)
		case roll < 0.9:
			score = g.rng.IntN(40) + 30
		default:
			score = g.rng.IntN(30) + 70
		}

		tx := req.ToTransaction()
		tx.ID = fmt.Sprintf("demo-%d", i)
		tx.FraudScore = score
		tx.RiskFactors = scoring.RiskFactors(req)
		tx.Timestamp = now.Add(-time.Duration(g.rng.IntN(30*24)) * time.Hour)

		records = append(records, tx)
	}

	return records
}
