// Command margin-scrape fetches and stores the daily margin sheet for a
// single trading date.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcxmargin/internal/config"
	"mcxmargin/internal/report"
	"mcxmargin/internal/scrape"
	"mcxmargin/internal/store"
	"mcxmargin/internal/util"
)

func main() {
	date := flag.String("date", "", "trading date to fetch, YYYY-MM-DD (default: today)")
	flag.Parse()

	cfg := loadConfig()
	logger := util.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	target := *date
	if target == "" {
		target = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", target); err != nil {
		log.Fatalf("invalid -date %q: want YYYY-MM-DD", target)
	}

	s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer s.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scraper := scrape.New(cfg.Scrape)
	logger.Info("fetching margin sheet", "date", target)

	recs, err := scraper.FetchDate(ctx, target)
	if err != nil {
		log.Fatalf("fetching %s: %v", target, err)
	}
	if len(recs) == 0 {
		logger.Info("no records published for date (holiday / no trading)", "date", target)
		return
	}

	// Single-date mode stores every symbol on the sheet; the allow list
	// only applies to backfill runs.
	for i := range recs {
		if err := s.Upsert(ctx, &recs[i]); err != nil {
			log.Fatalf("storing %s %s: %v", recs[i].Symbol, recs[i].Expiry, err)
		}
	}
	logger.Info("stored margin records", "date", target, "count", len(recs))

	sample := recs
	if len(sample) > 10 {
		sample = sample[:10]
	}
	report.RenderMargins(os.Stdout, sample)
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
