// Package domain defines the value types shared across the scrape, store,
// and reporting layers.
package domain

// FileIDUnknown is stored when the upstream feed omits the file identifier.
// The uniqueness constraint on (date, symbol, expiry, file_id) needs a total
// key; a NULL here would make SQLite treat every re-fetch as a new row.
const FileIDUnknown = -1

// MarginRecord is one normalized daily-margin row published by the clearing
// corporation for a single contract. Percentage and volatility fields are
// pointers: nil means the exchange published no value ("-", "n/a", blank).
type MarginRecord struct {
	Date         string `json:"date"` // trading date, YYYY-MM-DD
	Symbol       string `json:"symbol"`
	Expiry       string `json:"expiry"` // as published, may be empty
	InstrumentID string `json:"instrument_id"`
	FileID       int64  `json:"file_id"`

	InitialMarginPct     *float64 `json:"initial_margin_pct"`
	ELMPct               *float64 `json:"elm_pct"`
	TenderMarginPct      *float64 `json:"tender_margin_pct"`
	TotalMarginPct       *float64 `json:"total_margin_pct"`
	AdditionalLongPct    *float64 `json:"additional_long_margin_pct"`
	AdditionalShortPct   *float64 `json:"additional_short_margin_pct"`
	SpecialLongPct       *float64 `json:"special_long_margin_pct"`
	SpecialShortPct      *float64 `json:"special_short_margin_pct"`
	DeliveryMarginPct    *float64 `json:"delivery_margin_pct"`
	DailyVolatility      *float64 `json:"daily_volatility"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`

	// Raw is the JSON snapshot of the normalized row as it was persisted.
	Raw string `json:"-"`
	// CreatedAt is the insertion timestamp as stored ("YYYY-MM-DD HH:MM:SS").
	CreatedAt string `json:"created_at,omitempty"`
}

// Pct wraps a float64 into the pointer representation used for optional
// percentage fields.
func Pct(v float64) *float64 { return &v }
