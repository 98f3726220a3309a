// Command margin-backfill collects daily margin sheets for every business
// day in a date range, skipping dates already stored. Safe to re-run: each
// pass only fetches what is still missing.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcxmargin/internal/backfill"
	"mcxmargin/internal/config"
	"mcxmargin/internal/scrape"
	"mcxmargin/internal/store"
	"mcxmargin/internal/util"
)

func main() {
	start := flag.String("start", "", "first date of the range, YYYY-MM-DD (default: config backfill.start_date)")
	end := flag.String("end", "", "last date of the range, YYYY-MM-DD (default: today)")
	flag.Parse()

	cfg := loadConfig()

	// Dual logger: stdout + /tmp log file.
	logFileName := fmt.Sprintf("/tmp/margin-backfill-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	logger := util.NewLogger(w, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	startDate := *start
	if startDate == "" {
		startDate = cfg.Backfill.StartDate
	}
	if startDate == "" {
		log.Fatal("no start date: pass -start or set backfill.start_date in config")
	}
	startT, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		log.Fatalf("invalid start date %q: want YYYY-MM-DD", startDate)
	}

	endT := util.Midnight(time.Now())
	if *end != "" {
		endT, err = time.Parse("2006-01-02", *end)
		if err != nil {
			log.Fatalf("invalid -end %q: want YYYY-MM-DD", *end)
		}
	}

	s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer s.Close()

	scraper := scrape.New(cfg.Scrape)
	runner := backfill.NewRunner(scraper, s, cfg.Backfill.Symbols,
		time.Duration(cfg.Backfill.RequestDelaySec)*time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting backfill",
		"start", startT.Format("2006-01-02"), "end", endT.Format("2006-01-02"),
		"symbols", cfg.Backfill.Symbols, "logFile", logFileName)

	res, err := runner.Run(ctx, startT, endT)
	if res != nil {
		fmt.Println("--------------------------------------------")
		fmt.Printf("dates attempted:  %d\n", res.Attempted)
		fmt.Printf("dates with data:  %d\n", res.WithData)
		fmt.Printf("dates empty:      %d\n", res.Empty)
		fmt.Printf("dates failed:     %d\n", res.Failed)
		fmt.Printf("records saved:    %d\n", res.RecordsSaved)
		fmt.Println("--------------------------------------------")
	}
	if err != nil {
		log.Fatalf("backfill stopped: %v", err)
	}
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
