// Benchmark and seed tool for FraudLens.
//
// Usage:
//   go run cmd/benchmark/main.go -url http://localhost:8080 -count 1000
//
// This tool:
//   1. Generates random transaction requests across the known cities,
//      day periods, and device categories
//   2. Sends each to FraudLens for scoring
//   3. Reports the score distribution, latency, and throughput
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// Metrics tracks benchmark results.
type Metrics struct {
	LowRisk    int64 // score < 30
	MediumRisk int64 // 30 <= score < 70
	HighRisk   int64 // score >= 70

	TotalProcessed int64
	TotalErrors    int64

	ProcessingTimeMs int64
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "FraudLens base URL")
	count := flag.Int("count", 1000, "Number of transactions to send")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed for request generation")
	verbose := flag.Bool("verbose", false, "Print each scored record")
	flag.Parse()

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║              FRAUDLENS BENCHMARK - Scoring Load               ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nFraudLens URL: %s\n", *baseURL)
	fmt.Printf("Count:         %d\n", *count)
	fmt.Printf("Workers:       %d\n", *workers)
	fmt.Printf("Seed:          %d\n", *seed)
	fmt.Println()

	// Check FraudLens is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: FraudLens not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure FraudLens is running:")
		fmt.Println("  go run cmd/fraudlens/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ FraudLens is healthy")

	requests := generateRequests(*count, *seed)
	fmt.Printf("✓ Generated %d requests\n", len(requests))

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(requests, *baseURL, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// generateRequests builds random requests over the dashboard's attribute
// vocabulary. Amounts are skewed low so the score distribution resembles
// real traffic rather than worst-case stacking.
func generateRequests(n int, seed uint64) []*domain.TransactionRequest {
	rng := rand.New(rand.NewPCG(seed, seed))

	requests := make([]*domain.TransactionRequest, 0, n)
	for i := 0; i < n; i++ {
		amount := float64(rng.IntN(8000) + 100)
		if rng.Float64() < 0.2 {
			amount = float64(rng.IntN(60000) + 5000)
		}

		requests = append(requests, &domain.TransactionRequest{
			Amount:    amount,
			Location:  domain.KnownCities[rng.IntN(len(domain.KnownCities))],
			TimeOfDay: domain.DayPeriods[rng.IntN(len(domain.DayPeriods))],
			Device:    domain.DeviceCategories[rng.IntN(len(domain.DeviceCategories))],
		})
	}

	return requests
}

func runBenchmark(requests []*domain.TransactionRequest, baseURL string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	work := make(chan *domain.TransactionRequest, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for req := range work {
				start := time.Now()
				tx, err := scoreTransaction(client, baseURL, req)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %v\n", err)
					}
					continue
				}

				switch {
				case tx.FraudScore >= 70:
					atomic.AddInt64(&metrics.HighRisk, 1)
				case tx.FraudScore >= 30:
					atomic.AddInt64(&metrics.MediumRisk, 1)
				default:
					atomic.AddInt64(&metrics.LowRisk, 1)
				}

				if verbose {
					fmt.Printf("  %-12s | %-10s | Amount: %10.0f | Score: %3d\n",
						tx.Location,
						tx.TimeOfDay,
						tx.Amount,
						tx.FraudScore,
					)
				}
			}
		}()
	}

	for _, req := range requests {
		work <- req
	}
	close(work)

	wg.Wait()

	return metrics
}

func scoreTransaction(client *http.Client, baseURL string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var tx domain.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, err
	}

	return &tx, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 SCORE DISTRIBUTION\n")
	scored := m.TotalProcessed - m.TotalErrors
	if scored > 0 {
		fmt.Printf("   Low    (< 30):   %6d (%.1f%%)\n", m.LowRisk, 100*float64(m.LowRisk)/float64(scored))
		fmt.Printf("   Medium (30-69):  %6d (%.1f%%)\n", m.MediumRisk, 100*float64(m.MediumRisk)/float64(scored))
		fmt.Printf("   High   (>= 70):  %6d (%.1f%%)\n", m.HighRisk, 100*float64(m.HighRisk)/float64(scored))
	}
	fmt.Printf("   Errors:          %6d\n", m.TotalErrors)

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		tps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f tx/sec\n", tps)
	}

	fmt.Println()
}
