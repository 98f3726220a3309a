package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"mcxmargin/internal/domain"
	"mcxmargin/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "margins.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewServer(s, slog.Default()), s
}

func seed(t *testing.T, s *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	recs := []domain.MarginRecord{
		{Date: "2025-06-03", Symbol: "NATURALGAS", Expiry: "25JUN2025", FileID: 1, InitialMarginPct: domain.Pct(10.5)},
		{Date: "2025-06-02", Symbol: "NATURALGAS", Expiry: "25JUN2025", FileID: 1, InitialMarginPct: domain.Pct(10.0)},
		{Date: "2025-06-02", Symbol: "NATGASMINI", Expiry: "25JUN2025", FileID: 1, InitialMarginPct: domain.Pct(9.0)},
	}
	for i := range recs {
		if err := s.Upsert(ctx, &recs[i]); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
}

func get(t *testing.T, h http.Handler, url string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if out != nil && rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding %s response: %v", url, err)
		}
	}
	return rr
}

func TestHandleMargins(t *testing.T) {
	srv, s := newTestServer(t)
	seed(t, s)
	h := srv.Handler()

	var resp MarginsResponse
	rr := get(t, h, "/api/margins", &resp)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
	if resp.Margins[0].Date != "2025-06-03" {
		t.Errorf("first date = %s, want newest first", resp.Margins[0].Date)
	}
}

func TestHandleMarginsFilters(t *testing.T) {
	srv, s := newTestServer(t)
	seed(t, s)
	h := srv.Handler()

	var resp MarginsResponse
	get(t, h, "/api/margins?symbol=natgasmini", &resp)
	if resp.Count != 1 || resp.Margins[0].Symbol != "NATGASMINI" {
		t.Errorf("symbol filter: got %+v, want one NATGASMINI row", resp)
	}

	get(t, h, "/api/margins?date=2025-06-02", &resp)
	if resp.Count != 2 {
		t.Errorf("date filter: count = %d, want 2", resp.Count)
	}

	get(t, h, "/api/margins?limit=1", &resp)
	if resp.Count != 1 {
		t.Errorf("limit: count = %d, want 1", resp.Count)
	}

	rr := get(t, h, "/api/margins?limit=bogus", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rr.Code)
	}
}

func TestHandleSummary(t *testing.T) {
	srv, s := newTestServer(t)
	seed(t, s)

	var resp SummaryResponse
	get(t, srv.Handler(), "/api/summary", &resp)
	if len(resp.Symbols) != 2 {
		t.Fatalf("symbols = %d, want 2", len(resp.Symbols))
	}
	// Ordered by symbol: NATGASMINI before NATURALGAS.
	if resp.Symbols[0].Symbol != "NATGASMINI" || resp.Symbols[1].RecordCount != 2 {
		t.Errorf("summary = %+v", resp.Symbols)
	}
}

func TestHandleDates(t *testing.T) {
	srv, s := newTestServer(t)
	seed(t, s)

	var resp DatesResponse
	get(t, srv.Handler(), "/api/dates", &resp)
	if resp.Count != 2 || resp.Dates[0] != "2025-06-03" {
		t.Errorf("dates = %+v, want two dates newest first", resp)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, s := newTestServer(t)
	seed(t, s)

	var resp HealthResponse
	rr := get(t, srv.Handler(), "/api/health", &resp)
	if rr.Code != http.StatusOK || resp.Status != "ok" || resp.Records != 3 {
		t.Errorf("health = %+v (status %d)", resp, rr.Code)
	}
}

func TestEmptyStoreReturnsEmptyArrays(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := get(t, h, "/api/summary", nil)
	if body := rr.Body.String(); !json.Valid([]byte(body)) || body == "" {
		t.Fatalf("summary body = %q", body)
	}
	var sum SummaryResponse
	json.Unmarshal(rr.Body.Bytes(), &sum)
	if sum.Symbols == nil {
		t.Error("summary symbols should be [] not null")
	}

	var dates DatesResponse
	get(t, h, "/api/dates", &dates)
	if dates.Dates == nil {
		t.Error("dates should be [] not null")
	}
}
