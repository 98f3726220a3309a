package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"mcxmargin/internal/domain"
)

// MarginRow is the Parquet schema for exported margin data. Optional
// percentage fields map to optional Parquet columns.
type MarginRow struct {
	Date         string `parquet:"date"`
	Symbol       string `parquet:"symbol"`
	Expiry       string `parquet:"expiry"`
	InstrumentID string `parquet:"instrument_id"`
	FileID       int64  `parquet:"file_id"`

	InitialMarginPct     *float64 `parquet:"initial_margin_pct,optional"`
	ELMPct               *float64 `parquet:"elm_pct,optional"`
	TenderMarginPct      *float64 `parquet:"tender_margin_pct,optional"`
	TotalMarginPct       *float64 `parquet:"total_margin_pct,optional"`
	AdditionalLongPct    *float64 `parquet:"additional_long_margin_pct,optional"`
	AdditionalShortPct   *float64 `parquet:"additional_short_margin_pct,optional"`
	SpecialLongPct       *float64 `parquet:"special_long_margin_pct,optional"`
	SpecialShortPct      *float64 `parquet:"special_short_margin_pct,optional"`
	DeliveryMarginPct    *float64 `parquet:"delivery_margin_pct,optional"`
	DailyVolatility      *float64 `parquet:"daily_volatility,optional"`
	AnnualizedVolatility *float64 `parquet:"annualized_volatility,optional"`

	CreatedAt string `parquet:"created_at"`
}

// WriteParquet writes the given records as a single Parquet file at path,
// creating parent directories as needed. The caller controls ordering; rows
// are written as passed.
func WriteParquet(path string, recs []domain.MarginRecord) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to export")
	}

	rows := make([]MarginRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, MarginRow{
			Date:                 r.Date,
			Symbol:               r.Symbol,
			Expiry:               r.Expiry,
			InstrumentID:         r.InstrumentID,
			FileID:               r.FileID,
			InitialMarginPct:     r.InitialMarginPct,
			ELMPct:               r.ELMPct,
			TenderMarginPct:      r.TenderMarginPct,
			TotalMarginPct:       r.TotalMarginPct,
			AdditionalLongPct:    r.AdditionalLongPct,
			AdditionalShortPct:   r.AdditionalShortPct,
			SpecialLongPct:       r.SpecialLongPct,
			SpecialShortPct:      r.SpecialShortPct,
			DeliveryMarginPct:    r.DeliveryMarginPct,
			DailyVolatility:      r.DailyVolatility,
			AnnualizedVolatility: r.AnnualizedVolatility,
			CreatedAt:            r.CreatedAt,
		})
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("writing parquet file: %w", err)
	}
	return nil
}

// ReadParquet reads back an exported Parquet file. Used by tests and ad-hoc
// verification.
func ReadParquet(path string) ([]MarginRow, error) {
	rows, err := parquet.ReadFile[MarginRow](path)
	if err != nil {
		return nil, fmt.Errorf("reading parquet file: %w", err)
	}
	return rows, nil
}
