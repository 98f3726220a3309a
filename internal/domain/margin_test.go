package domain

import (
	"encoding/json"
	"testing"
)

func TestZeroValueRecord(t *testing.T) {
	rec := MarginRecord{}
	if rec.Symbol != "" {
		t.Error("expected empty Symbol for zero-value MarginRecord")
	}
	if rec.InitialMarginPct != nil {
		t.Error("expected nil InitialMarginPct for zero-value MarginRecord")
	}
	if rec.FileID != 0 {
		t.Error("expected zero FileID for zero-value MarginRecord")
	}
}

func TestPct(t *testing.T) {
	p := Pct(12.5)
	if p == nil || *p != 12.5 {
		t.Fatalf("Pct(12.5) = %v, want pointer to 12.5", p)
	}
}

func TestRecordJSONShape(t *testing.T) {
	rec := MarginRecord{
		Date:             "2025-06-02",
		Symbol:           "NATURALGAS",
		Expiry:           "25JUN2025",
		FileID:           FileIDUnknown,
		InitialMarginPct: Pct(10.0),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m["symbol"] != "NATURALGAS" {
		t.Errorf("symbol = %v, want NATURALGAS", m["symbol"])
	}
	if m["initial_margin_pct"] != 10.0 {
		t.Errorf("initial_margin_pct = %v, want 10", m["initial_margin_pct"])
	}
	// Absent values must serialize as explicit nulls, matching the stored
	// snapshot format.
	if v, ok := m["elm_pct"]; !ok || v != nil {
		t.Errorf("elm_pct = %v (present=%v), want explicit null", v, ok)
	}
	if _, ok := m["Raw"]; ok {
		t.Error("Raw should not appear in the JSON snapshot")
	}
}
