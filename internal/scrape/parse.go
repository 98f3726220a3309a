package scrape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mcxmargin/internal/domain"
)

// headerSymbols are placeholder values the feed occasionally emits for
// header or summary rows; rows carrying them are dropped.
var headerSymbols = map[string]struct{}{
	"symbol":    {},
	"contract":  {},
	"commodity": {},
}

// ParseResponse extracts the raw margin rows from a GetDailyMargin response
// body. The endpoint wraps its payload in the ASP.NET web-service envelope
// {"d": {"Summary": {"Count": n}, "Data": [...]}} where "d" may itself be a
// JSON-encoded string; a bare array is also accepted. A null Data field
// means no trading that day and yields zero rows without error.
func ParseResponse(body []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if trimmed[0] == '[' {
		var rows []map[string]any
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decoding row array: %w", err)
		}
		return rows, nil
	}

	var env struct {
		D json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}
	if len(env.D) == 0 {
		return nil, fmt.Errorf("unexpected response format: no \"d\" field")
	}

	inner := bytes.TrimSpace(env.D)
	if inner[0] == '"' {
		// "d" is a JSON string containing the real payload.
		var s string
		if err := json.Unmarshal(inner, &s); err != nil {
			return nil, fmt.Errorf("decoding string-wrapped payload: %w", err)
		}
		inner = []byte(s)
	}

	var payload struct {
		Summary struct {
			Count int `json:"Count"`
		} `json:"Summary"`
		Data []map[string]any `json:"Data"`
	}
	if err := json.Unmarshal(inner, &payload); err != nil {
		return nil, fmt.Errorf("decoding margin payload: %w", err)
	}

	return payload.Data, nil
}

// Normalize maps one raw API row to a MarginRecord for the given trading
// date. Returns nil for rows that should be skipped (blank symbol,
// header/summary placeholders).
func Normalize(raw map[string]any, date string) *domain.MarginRecord {
	symbol := strings.TrimSpace(stringField(raw, "Symbol"))
	if symbol == "" {
		return nil
	}
	if _, ok := headerSymbols[strings.ToLower(symbol)]; ok {
		return nil
	}

	rec := &domain.MarginRecord{
		Date:         date,
		Symbol:       symbol,
		Expiry:       strings.TrimSpace(stringField(raw, "ExpiryDate")),
		InstrumentID: stringField(raw, "InstrumentID"),
		FileID:       fileID(raw),

		InitialMarginPct:     ParsePct(raw["InitialMargin"]),
		ELMPct:               ParsePct(elmValue(raw)),
		TenderMarginPct:      ParsePct(raw["TenderMargin"]),
		TotalMarginPct:       ParsePct(raw["TotalMargin"]),
		AdditionalLongPct:    ParsePct(raw["AdditionalLongMargin"]),
		AdditionalShortPct:   ParsePct(raw["AdditionalShortMargin"]),
		SpecialLongPct:       ParsePct(raw["SpecialLongMargin"]),
		SpecialShortPct:      ParsePct(raw["SpecialShortMargin"]),
		DeliveryMarginPct:    ParsePct(raw["DeliveryMargin"]),
		DailyVolatility:      ParsePct(raw["DailyVolatility"]),
		AnnualizedVolatility: ParsePct(raw["AnnualizedVolatility"]),
	}

	// Snapshot of the normalized row, stored alongside the typed columns.
	if b, err := json.Marshal(rec); err == nil {
		rec.Raw = string(b)
	}

	return rec
}

// elmValue resolves the extreme-loss margin: ELMLong when published,
// otherwise ELMShort (they are equal in practice, ELMLong is occasionally
// absent), otherwise nothing.
func elmValue(raw map[string]any) any {
	if v, ok := raw["ELMLong"]; ok && truthy(v) {
		return v
	}
	return raw["ELMShort"]
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case float64:
		return t != 0
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

// ParsePct parses a percentage-like value from the feed. Numbers pass
// through; strings are stripped of "%" and thousands separators; blank,
// "-", and "n/a" mean the value was not published.
func ParsePct(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return domain.Pct(t)
	case int:
		return domain.Pct(float64(t))
	case string:
		s := strings.TrimSpace(t)
		s = strings.ReplaceAll(s, "%", "")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return domain.Pct(f)
	default:
		return nil
	}
}

func stringField(raw map[string]any, key string) string {
	switch t := raw[key].(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func fileID(raw map[string]any) int64 {
	switch t := raw["FileID"].(type) {
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
	}
	return domain.FileIDUnknown
}
