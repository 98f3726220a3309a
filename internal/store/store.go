// Package store persists normalized margin records and answers the
// read-side queries used by the backfill driver and reporting tools.
package store

import (
	"context"

	"mcxmargin/internal/domain"
)

// MarginStore persists and retrieves daily margin records.
type MarginStore interface {
	// Upsert inserts the record, or updates its value fields in place when a
	// row with the same (date, symbol, expiry, file_id) already exists.
	Upsert(ctx context.Context, rec *domain.MarginRecord) error

	// Margins returns records matching the filter, ordered by date
	// descending, then symbol and expiry ascending.
	Margins(ctx context.Context, f Filter) ([]domain.MarginRecord, error)

	// Summary returns per-symbol aggregates over rows with a published
	// initial margin, ordered by symbol.
	Summary(ctx context.Context) ([]SymbolSummary, error)

	// Dates returns all distinct trading dates present, newest first.
	Dates(ctx context.Context) ([]string, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)
}

// Filter restricts a Margins query. Zero values mean "no restriction".
type Filter struct {
	Symbol string // case-insensitive substring match
	Date   string // exact YYYY-MM-DD match
	Limit  int
}

// SymbolSummary aggregates the stored history for one symbol.
type SymbolSummary struct {
	Symbol           string  `json:"symbol"`
	RecordCount      int64   `json:"record_count"`
	EarliestDate     string  `json:"earliest_date"`
	LatestDate       string  `json:"latest_date"`
	AvgInitialMargin float64 `json:"avg_initial_margin"`
	MinInitialMargin float64 `json:"min_initial_margin"`
	MaxInitialMargin float64 `json:"max_initial_margin"`
}
