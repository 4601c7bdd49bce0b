// Package query applies sorting and pagination to the transaction
// collection.
package query

import (
	"sort"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// Defaults applied when a listing request omits parameters.
const (
	DefaultPage      = 1
	DefaultPageSize  = 10
	DefaultSortBy    = "timestamp"
	DefaultDirection = "desc"
)

// Options selects a sorted page of the collection.
type Options struct {
	Page          int
	PageSize      int
	SortBy        string
	SortDirection string
}

// Result is one page of the collection plus paging metadata.
type Result struct {
	Transactions []*domain.Transaction `json:"transactions"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
	TotalPages   int                   `json:"totalPages"`
}

// normalize fills unset options with defaults.
func (o Options) normalize() Options {
	if o.Page <= 0 {
		o.Page = DefaultPage
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.SortBy == "" {
		o.SortBy = DefaultSortBy
	}
	if o.SortDirection != "asc" {
		o.SortDirection = DefaultDirection
	}
	return o
}

// Apply sorts the records by the selected field and returns the requested
// page. The input slice is not modified. Pages beyond the end yield an empty
// page with the total unchanged; equal sort keys keep their input order
// (stable sort, no secondary key).
func Apply(records []*domain.Transaction, opts Options) *Result {
	opts = opts.normalize()

	sorted := make([]*domain.Transaction, len(records))
	copy(sorted, records)

	less := lessFunc(opts.SortBy)
	sort.SliceStable(sorted, func(i, j int) bool {
		if opts.SortDirection == "asc" {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})

	total := len(sorted)
	totalPages := (total + opts.PageSize - 1) / opts.PageSize

	start := (opts.Page - 1) * opts.PageSize
	end := start + opts.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Result{
		Transactions: sorted[start:end],
		Total:        total,
		Page:         opts.Page,
		PageSize:     opts.PageSize,
		TotalPages:   totalPages,
	}
}

// lessFunc returns the ascending comparison for a sort field. Timestamps
// compare as instants, numeric fields numerically, everything else
// lexically. Unknown fields fall back to the timestamp.
func lessFunc(sortBy string) func(a, b *domain.Transaction) bool {
	switch sortBy {
	case "amount":
		return func(a, b *domain.Transaction) bool { return a.Amount < b.Amount }
	case "fraudScore":
		return func(a, b *domain.Transaction) bool { return a.FraudScore < b.FraudScore }
	case "location":
		return func(a, b *domain.Transaction) bool { return a.Location < b.Location }
	case "time":
		return func(a, b *domain.Transaction) bool { return a.TimeOfDay < b.TimeOfDay }
	case "device":
		return func(a, b *domain.Transaction) bool { return a.Device < b.Device }
	case "id":
		return func(a, b *domain.Transaction) bool { return a.ID < b.ID }
	default:
		return func(a, b *domain.Transaction) bool { return a.Timestamp.Before(b.Timestamp) }
	}
}
