// Command margin-query inspects the stored margin history: filtered record
// listings, per-symbol summaries, stored dates, and xlsx/parquet exports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"mcxmargin/internal/config"
	"mcxmargin/internal/report"
	"mcxmargin/internal/store"
	"mcxmargin/internal/util"
)

func main() {
	summary := flag.Bool("summary", false, "print per-symbol aggregates")
	dates := flag.Bool("dates", false, "print stored trading dates")
	date := flag.String("date", "", "restrict listing to one date, YYYY-MM-DD")
	limit := flag.Int("limit", 50, "maximum rows to list (0 = no limit)")
	xlsx := flag.String("xlsx", "", "export the full history to an xlsx workbook at this path")
	parquet := flag.String("parquet", "", "export the full history to a parquet file at this path")
	flag.Parse()

	cfg := loadConfig()
	util.SetDefault(util.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

	s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	switch {
	case *xlsx != "":
		exportExcel(ctx, s, *xlsx)
	case *parquet != "":
		exportParquet(ctx, s, *parquet)
	case *summary:
		printSummary(ctx, s)
	case *dates:
		printDates(ctx, s)
	default:
		listMargins(ctx, s, flag.Arg(0), *date, *limit)
	}
}

func listMargins(ctx context.Context, s store.MarginStore, symbol, date string, limit int) {
	recs, err := s.Margins(ctx, store.Filter{Symbol: symbol, Date: date, Limit: limit})
	if err != nil {
		log.Fatalf("querying margins: %v", err)
	}
	if len(recs) == 0 {
		fmt.Println("no records match")
		return
	}
	report.RenderMargins(os.Stdout, recs)
	fmt.Printf("%d record(s)\n", len(recs))
}

func printSummary(ctx context.Context, s store.MarginStore) {
	sums, err := s.Summary(ctx)
	if err != nil {
		log.Fatalf("querying summary: %v", err)
	}
	if len(sums) == 0 {
		fmt.Println("store is empty")
		return
	}
	report.RenderSummary(os.Stdout, sums)
}

func printDates(ctx context.Context, s store.MarginStore) {
	ds, err := s.Dates(ctx)
	if err != nil {
		log.Fatalf("querying dates: %v", err)
	}
	for _, d := range ds {
		fmt.Println(d)
	}
	fmt.Printf("%d date(s)\n", len(ds))
}

func exportExcel(ctx context.Context, s store.MarginStore, path string) {
	recs, err := s.Margins(ctx, store.Filter{})
	if err != nil {
		log.Fatalf("querying margins: %v", err)
	}
	sums, err := s.Summary(ctx)
	if err != nil {
		log.Fatalf("querying summary: %v", err)
	}
	if err := report.WriteExcel(path, recs, sums); err != nil {
		log.Fatalf("exporting xlsx: %v", err)
	}
	fmt.Printf("wrote %d record(s) to %s\n", len(recs), path)
}

func exportParquet(ctx context.Context, s store.MarginStore, path string) {
	recs, err := s.Margins(ctx, store.Filter{})
	if err != nil {
		log.Fatalf("querying margins: %v", err)
	}
	if err := store.WriteParquet(path, recs); err != nil {
		log.Fatalf("exporting parquet: %v", err)
	}
	fmt.Printf("wrote %d record(s) to %s\n", len(recs), path)
}

func loadConfig() *config.Config {
	cfgPath := "config/mcxmargin.yaml"
	if p := os.Getenv("MCXMARGIN_CONFIG"); p != "" {
		cfgPath = p
	}
	if _, err := os.Stat(cfgPath); err != nil {
		return config.Default()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}
