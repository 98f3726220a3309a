// Package httpapi exposes the stored margin data over a small read-only
// JSON API.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"mcxmargin/internal/store"
)

// Server serves the margin query API backed by a MarginStore.
type Server struct {
	store store.MarginStore
	log   *slog.Logger
}

// NewServer creates a Server over the given store.
func NewServer(s store.MarginStore, log *slog.Logger) *Server {
	return &Server{store: s, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/margins", s.handleMargins)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/dates", s.handleDates)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleMargins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.Filter{
		Symbol: strings.TrimSpace(q.Get("symbol")),
		Date:   strings.TrimSpace(q.Get("date")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	recs, err := s.store.Margins(r.Context(), f)
	if err != nil {
		s.log.Error("querying margins", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, MarginsResponse{Count: len(recs), Margins: recs})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sums, err := s.store.Summary(r.Context())
	if err != nil {
		s.log.Error("querying summary", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if sums == nil {
		sums = []store.SymbolSummary{}
	}
	writeJSON(w, SummaryResponse{Symbols: sums})
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.store.Dates(r.Context())
	if err != nil {
		s.log.Error("querying dates", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, DatesResponse{Count: len(dates), Dates: dates})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, HealthResponse{Status: "ok", Records: n})
}
