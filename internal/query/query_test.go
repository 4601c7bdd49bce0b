package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/fraudlens/fraudlens/internal/domain"
)

func fixture() []*domain.Transaction {
	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	var records []*domain.Transaction
	for i := 0; i < 25; i++ {
		records = append(records, &domain.Transaction{
			ID:         fmt.Sprintf("tx-%02d", i),
			Amount:     float64((i * 7919) % 40000),
			Location:   domain.KnownCities[i%len(domain.KnownCities)],
			TimeOfDay:  domain.DayPeriods[i%len(domain.DayPeriods)],
			Device:     domain.DeviceCategories[i%len(domain.DeviceCategories)],
			FraudScore: (i * 13) % 101,
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	return records
}

func TestApplyDefaults(t *testing.T) {
	records := fixture()
	res := Apply(records, Options{})

	if res.Page != 1 || res.PageSize != 10 {
		t.Errorf("expected default page 1 size 10, got %d/%d", res.Page, res.PageSize)
	}
	if res.Total != 25 {
		t.Errorf("expected total 25, got %d", res.Total)
	}
	if res.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", res.TotalPages)
	}
	if len(res.Transactions) != 10 {
		t.Fatalf("expected 10 records, got %d", len(res.Transactions))
	}

	// Default sort is timestamp descending
	if res.Transactions[0].ID != "tx-24" {
		t.Errorf("expected newest first, got %s", res.Transactions[0].ID)
	}
	for i := 1; i < len(res.Transactions); i++ {
		if res.Transactions[i].Timestamp.After(res.Transactions[i-1].Timestamp) {
			t.Fatalf("timestamps not descending at %d", i)
		}
	}
}

func TestApplySortFields(t *testing.T) {
	records := fixture()

	t.Run("AmountAscending", func(t *testing.T) {
		res := Apply(records, Options{SortBy: "amount", SortDirection: "asc", PageSize: 25})
		for i := 1; i < len(res.Transactions); i++ {
			if res.Transactions[i].Amount < res.Transactions[i-1].Amount {
				t.Fatalf("amounts not ascending at %d", i)
			}
		}
	})

	t.Run("FraudScoreDescending", func(t *testing.T) {
		res := Apply(records, Options{SortBy: "fraudScore", SortDirection: "desc", PageSize: 25})
		for i := 1; i < len(res.Transactions); i++ {
			if res.Transactions[i].FraudScore > res.Transactions[i-1].FraudScore {
				t.Fatalf("scores not descending at %d", i)
			}
		}
	})

	t.Run("LocationLexical", func(t *testing.T) {
		res := Apply(records, Options{SortBy: "location", SortDirection: "asc", PageSize: 25})
		for i := 1; i < len(res.Transactions); i++ {
			if res.Transactions[i].Location < res.Transactions[i-1].Location {
				t.Fatalf("locations not ascending at %d", i)
			}
		}
	})
}

func TestTimestampComparesAsInstant(t *testing.T) {
	// Lexical ordering of these RFC3339 strings would invert the instants
	// because of the differing offsets.
	early := time.Date(2026, 8, 10, 23, 0, 0, 0, time.UTC)
	late := early.Add(30 * time.Minute).In(time.FixedZone("IST", 5*3600+1800))

	records := []*domain.Transaction{
		{ID: "early", Timestamp: early},
		{ID: "late", Timestamp: late},
	}

	res := Apply(records, Options{SortBy: "timestamp", SortDirection: "desc"})
	if res.Transactions[0].ID != "late" {
		t.Errorf("expected instant comparison to put 'late' first, got %s", res.Transactions[0].ID)
	}
}

func TestApplyIdempotent(t *testing.T) {
	records := fixture()
	opts := Options{Page: 2, PageSize: 7, SortBy: "amount", SortDirection: "desc"}

	first := Apply(records, opts)
	second := Apply(records, opts)

	if first.Total != second.Total || len(first.Transactions) != len(second.Transactions) {
		t.Fatal("repeated queries returned different shapes")
	}
	for i := range first.Transactions {
		if first.Transactions[i].ID != second.Transactions[i].ID {
			t.Fatalf("position %d differs between identical queries", i)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := fixture()
	firstID := records[0].ID

	Apply(records, Options{SortBy: "amount", SortDirection: "asc"})

	if records[0].ID != firstID {
		t.Error("Apply reordered the caller's slice")
	}
}

func TestPaginationBounds(t *testing.T) {
	records := fixture()

	t.Run("LastPartialPage", func(t *testing.T) {
		res := Apply(records, Options{Page: 3, PageSize: 10})
		if len(res.Transactions) != 5 {
			t.Errorf("expected 5 records on last page, got %d", len(res.Transactions))
		}
	})

	t.Run("PageBeyondEnd", func(t *testing.T) {
		res := Apply(records, Options{Page: 9, PageSize: 10})
		if len(res.Transactions) != 0 {
			t.Errorf("expected empty page, got %d records", len(res.Transactions))
		}
		if res.Total != 25 {
			t.Errorf("total must be unchanged, got %d", res.Total)
		}
	})

	t.Run("EmptyCollection", func(t *testing.T) {
		res := Apply(nil, Options{})
		if res.Total != 0 || res.TotalPages != 0 || len(res.Transactions) != 0 {
			t.Errorf("unexpected result for empty collection: %+v", res)
		}
	})
}
