package httpapi

import (
	"mcxmargin/internal/domain"
	"mcxmargin/internal/store"
)

// MarginsResponse is the payload for GET /api/margins.
type MarginsResponse struct {
	Count   int                   `json:"count"`
	Margins []domain.MarginRecord `json:"margins"`
}

// SummaryResponse is the payload for GET /api/summary.
type SummaryResponse struct {
	Symbols []store.SymbolSummary `json:"symbols"`
}

// DatesResponse is the payload for GET /api/dates.
type DatesResponse struct {
	Count int      `json:"count"`
	Dates []string `json:"dates"`
}

// HealthResponse is the payload for GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int64  `json:"records"`
}
