package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcxmargin/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ MarginStore = (*SQLiteStore)(nil)

// SQLiteStore implements MarginStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS margins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		symbol TEXT NOT NULL,
		expiry TEXT NOT NULL DEFAULT '',
		instrument_id TEXT,
		file_id INTEGER NOT NULL DEFAULT -1,
		initial_margin_pct REAL,
		elm_pct REAL,
		tender_margin_pct REAL,
		total_margin_pct REAL,
		additional_long_margin_pct REAL,
		additional_short_margin_pct REAL,
		special_long_margin_pct REAL,
		special_short_margin_pct REAL,
		delivery_margin_pct REAL,
		daily_volatility REAL,
		annualized_volatility REAL,
		raw_data TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		UNIQUE(date, symbol, expiry, file_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_margins_date ON margins(date)`,
	`CREATE INDEX IF NOT EXISTS idx_margins_symbol ON margins(symbol)`,
	`CREATE INDEX IF NOT EXISTS idx_margins_date_symbol ON margins(date, symbol)`,
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creating
// parent directories and the schema as needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Upsert inserts the record or overwrites the value fields of the existing
// row with the same identifying tuple.
func (s *SQLiteStore) Upsert(ctx context.Context, rec *domain.MarginRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO margins (
			date, symbol, expiry, instrument_id, file_id,
			initial_margin_pct, elm_pct,
			tender_margin_pct, total_margin_pct,
			additional_long_margin_pct, additional_short_margin_pct,
			special_long_margin_pct, special_short_margin_pct,
			delivery_margin_pct, daily_volatility, annualized_volatility,
			raw_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, symbol, expiry, file_id) DO UPDATE SET
			instrument_id = excluded.instrument_id,
			initial_margin_pct = excluded.initial_margin_pct,
			elm_pct = excluded.elm_pct,
			tender_margin_pct = excluded.tender_margin_pct,
			total_margin_pct = excluded.total_margin_pct,
			additional_long_margin_pct = excluded.additional_long_margin_pct,
			additional_short_margin_pct = excluded.additional_short_margin_pct,
			special_long_margin_pct = excluded.special_long_margin_pct,
			special_short_margin_pct = excluded.special_short_margin_pct,
			delivery_margin_pct = excluded.delivery_margin_pct,
			daily_volatility = excluded.daily_volatility,
			annualized_volatility = excluded.annualized_volatility,
			raw_data = excluded.raw_data`,
		rec.Date, rec.Symbol, rec.Expiry, rec.InstrumentID, rec.FileID,
		nullable(rec.InitialMarginPct), nullable(rec.ELMPct),
		nullable(rec.TenderMarginPct), nullable(rec.TotalMarginPct),
		nullable(rec.AdditionalLongPct), nullable(rec.AdditionalShortPct),
		nullable(rec.SpecialLongPct), nullable(rec.SpecialShortPct),
		nullable(rec.DeliveryMarginPct), nullable(rec.DailyVolatility),
		nullable(rec.AnnualizedVolatility),
		rec.Raw,
	)
	if err != nil {
		return fmt.Errorf("upserting margin %s/%s/%s: %w", rec.Date, rec.Symbol, rec.Expiry, err)
	}
	return nil
}

// Margins returns records matching the filter.
func (s *SQLiteStore) Margins(ctx context.Context, f Filter) ([]domain.MarginRecord, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT date, symbol, expiry, instrument_id, file_id,
			initial_margin_pct, elm_pct,
			tender_margin_pct, total_margin_pct,
			additional_long_margin_pct, additional_short_margin_pct,
			special_long_margin_pct, special_short_margin_pct,
			delivery_margin_pct, daily_volatility, annualized_volatility,
			raw_data, created_at
		FROM margins WHERE 1=1`)

	var args []any
	if f.Symbol != "" {
		b.WriteString(" AND UPPER(symbol) LIKE UPPER(?)")
		args = append(args, "%"+f.Symbol+"%")
	}
	if f.Date != "" {
		b.WriteString(" AND date = ?")
		args = append(args, f.Date)
	}
	b.WriteString(" ORDER BY date DESC, symbol ASC, expiry ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying margins: %w", err)
	}
	defer rows.Close()

	var recs []domain.MarginRecord
	for rows.Next() {
		var rec domain.MarginRecord
		var instrumentID, raw sql.NullString
		var im, elm, tender, total, addLong, addShort, spLong, spShort, deliv, dvol, avol sql.NullFloat64
		err := rows.Scan(
			&rec.Date, &rec.Symbol, &rec.Expiry, &instrumentID, &rec.FileID,
			&im, &elm, &tender, &total,
			&addLong, &addShort, &spLong, &spShort,
			&deliv, &dvol, &avol,
			&raw, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning margin row: %w", err)
		}
		rec.InstrumentID = instrumentID.String
		rec.Raw = raw.String
		rec.InitialMarginPct = ptr(im)
		rec.ELMPct = ptr(elm)
		rec.TenderMarginPct = ptr(tender)
		rec.TotalMarginPct = ptr(total)
		rec.AdditionalLongPct = ptr(addLong)
		rec.AdditionalShortPct = ptr(addShort)
		rec.SpecialLongPct = ptr(spLong)
		rec.SpecialShortPct = ptr(spShort)
		rec.DeliveryMarginPct = ptr(deliv)
		rec.DailyVolatility = ptr(dvol)
		rec.AnnualizedVolatility = ptr(avol)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Summary returns per-symbol aggregates over rows with a published initial
// margin.
func (s *SQLiteStore) Summary(ctx context.Context) ([]SymbolSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			symbol,
			COUNT(*) AS record_count,
			MIN(date) AS earliest_date,
			MAX(date) AS latest_date,
			AVG(initial_margin_pct) AS avg_initial_margin,
			MIN(initial_margin_pct) AS min_initial_margin,
			MAX(initial_margin_pct) AS max_initial_margin
		FROM margins
		WHERE initial_margin_pct IS NOT NULL
		GROUP BY symbol
		ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}
	defer rows.Close()

	var sums []SymbolSummary
	for rows.Next() {
		var sum SymbolSummary
		err := rows.Scan(&sum.Symbol, &sum.RecordCount, &sum.EarliestDate, &sum.LatestDate,
			&sum.AvgInitialMargin, &sum.MinInitialMargin, &sum.MaxInitialMargin)
		if err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// Dates returns all distinct trading dates, newest first.
func (s *SQLiteStore) Dates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT date FROM margins ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Count returns the total number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM margins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting margins: %w", err)
	}
	return n, nil
}

func nullable(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
