// Package backfill drives the idempotent date-range collection loop: it
// computes the business days missing from the store and feeds them to the
// fetcher one at a time with a fixed delay between requests.
package backfill

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mcxmargin/internal/scrape"
	"mcxmargin/internal/store"
	"mcxmargin/internal/util"
)

// Result tallies the per-date outcomes of one backfill run.
type Result struct {
	Attempted    int // dates actually tried
	WithData     int // dates that yielded at least one stored record
	Empty        int // dates with zero records (holiday / no trading)
	Failed       int // dates where the fetch errored; never aborts the run
	RecordsSaved int
}

// Runner coordinates one sequential backfill pass. One browser session per
// date, no parallel fetches.
type Runner struct {
	fetcher scrape.Fetcher
	store   store.MarginStore
	pacer   *util.Pacer
	symbols map[string]struct{} // allow list; empty means keep everything
	log     *slog.Logger
}

// NewRunner creates a Runner. Only records whose symbol is in symbols are
// persisted; delay is the fixed interval between fetch attempts.
func NewRunner(f scrape.Fetcher, s store.MarginStore, symbols []string, delay time.Duration) *Runner {
	allowed := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		allowed[strings.ToUpper(sym)] = struct{}{}
	}
	return &Runner{
		fetcher: f,
		store:   s,
		pacer:   util.NewPacer(delay),
		symbols: allowed,
		log:     slog.Default().With("component", "backfill"),
	}
}

// MissingDates returns the business days in [start, end] that have no
// records in the store, in ascending order. Re-running after a partial pass
// therefore only yields the dates still absent.
func (r *Runner) MissingDates(ctx context.Context, start, end time.Time) ([]string, error) {
	all := util.BusinessDays(start, end)

	existing, err := r.store.Dates(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		have[d] = struct{}{}
	}

	var missing []string
	for _, d := range all {
		if _, ok := have[d]; !ok {
			missing = append(missing, d)
		}
	}
	r.log.Info("computed work list",
		"weekdays", len(all), "existing", len(existing), "missing", len(missing))
	return missing, nil
}

// Run fetches every missing business day in [start, end]. A date that
// errors is counted and skipped; the loop only stops early when ctx is
// cancelled. The partial Result is returned alongside any context error.
func (r *Runner) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	missing, err := r.MissingDates(ctx, start, end)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, date := range missing {
		if err := r.pacer.Wait(ctx); err != nil {
			return res, err
		}

		r.log.Info("fetching date", "date", date, "progress", i+1, "total", len(missing))
		res.Attempted++

		recs, err := r.fetcher.FetchDate(ctx, date)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			r.log.Error("fetch failed, continuing", "date", date, "err", err)
			continue
		}

		saved := 0
		for i := range recs {
			if !r.allowed(recs[i].Symbol) {
				continue
			}
			if err := r.store.Upsert(ctx, &recs[i]); err != nil {
				r.log.Error("upsert failed", "date", date, "symbol", recs[i].Symbol, "err", err)
				continue
			}
			saved++
		}

		if saved > 0 {
			res.WithData++
			res.RecordsSaved += saved
			r.log.Info("date stored", "date", date, "records", saved)
		} else {
			res.Empty++
			r.log.Info("no records for date (holiday / no trading)", "date", date)
		}
	}

	return res, nil
}

func (r *Runner) allowed(symbol string) bool {
	if len(r.symbols) == 0 {
		return true
	}
	_, ok := r.symbols[strings.ToUpper(symbol)]
	return ok
}
