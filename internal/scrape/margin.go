// Package scrape drives a browser session against the clearing
// corporation's daily-margin page and turns the intercepted API response
// into normalized margin records.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"mcxmargin/internal/config"
	"mcxmargin/internal/domain"
)

// apiToken identifies the margin endpoint among the page's network traffic.
const apiToken = "GetDailyMargin"

var (
	// ErrBlocked is returned when the site's bot detection serves an
	// "Access Denied" page instead of the requested one.
	ErrBlocked = errors.New("blocked by site bot detection")

	// ErrNoResponse is returned when the page flow completed but the margin
	// API response never arrived within the session budget.
	ErrNoResponse = errors.New("no margin API response received")
)

// Fetcher retrieves normalized margin records for a single trading date.
type Fetcher interface {
	FetchDate(ctx context.Context, date string) ([]domain.MarginRecord, error)
}

// Compile-time interface check.
var _ Fetcher = (*Scraper)(nil)

// Scraper implements Fetcher with a fresh headless-Chrome session per date.
type Scraper struct {
	cfg config.Scrape
	log *slog.Logger
}

// New creates a Scraper for the configured site.
func New(cfg config.Scrape) *Scraper {
	return &Scraper{
		cfg: cfg,
		log: slog.Default().With("component", "scrape"),
	}
}

// setHiddenDateJS writes the YYYYMMDD date into the hidden form field the
// margin API actually reads; the visible #txtDate field is display-only.
const setHiddenDateJS = `(() => {
	var el = document.getElementById('cph_InnerContainerRight_C001_txtDate_hid_val');
	if (el) { el.value = '%s'; }
	return el ? el.value : '';
})()`

// FetchDate loads the daily-margin page for the given YYYY-MM-DD date and
// returns the normalized rows from the intercepted API response. Zero rows
// with a nil error means the exchange published nothing for that date.
func (s *Scraper) FetchDate(ctx context.Context, date string) ([]domain.MarginRecord, error) {
	dt, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	display := dt.Format("02/01/2006")
	hidden := dt.Format("20060102")

	actx, acancel := chromedp.NewExecAllocator(ctx, allocatorOptions(s.cfg)...)
	defer acancel()
	bctx, bcancel := chromedp.NewContext(actx)
	defer bcancel()

	timeout := time.Duration(s.cfg.TimeoutSec) * time.Second
	tctx, tcancel := context.WithTimeout(bctx, timeout)
	defer tcancel()

	bodyCh := make(chan []byte, 1)
	var (
		mu    sync.Mutex
		reqID network.RequestID
	)
	chromedp.ListenTarget(tctx, func(ev any) {
		switch ev := ev.(type) {
		case *network.EventResponseReceived:
			if strings.Contains(ev.Response.URL, apiToken) {
				mu.Lock()
				reqID = ev.RequestID
				mu.Unlock()
				s.log.Debug("margin API response seen", "date", date, "status", ev.Response.Status)
			}
		case *network.EventLoadingFinished:
			mu.Lock()
			match := reqID != "" && ev.RequestID == reqID
			mu.Unlock()
			if !match {
				return
			}
			// The body is only retrievable once loading has finished.
			go func() {
				c := chromedp.FromContext(tctx)
				body, err := network.GetResponseBody(ev.RequestID).Do(cdp.WithExecutor(tctx, c.Target))
				if err != nil {
					s.log.Warn("reading margin API body", "date", date, "err", err)
					return
				}
				select {
				case bodyCh <- body:
				default:
				}
			}()
		}
	})

	var homeTitle, pageTitle string
	err = chromedp.Run(tctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extraHeaders),
		injectStealth(),

		// Warm up on the homepage first; navigating straight to the margin
		// page trips the bot detection.
		chromedp.Navigate(s.cfg.HomeURL),
		chromedp.Title(&homeTitle),
		checkNotBlocked(&homeTitle),
		chromedp.Sleep(1*time.Second),

		chromedp.Navigate(s.cfg.MarginURL),
		chromedp.Title(&pageTitle),
		checkNotBlocked(&pageTitle),
		chromedp.Sleep(2*time.Second),

		chromedp.WaitVisible("#txtDate"),
		chromedp.SetValue("#txtDate", display),
		chromedp.Evaluate(fmt.Sprintf(setHiddenDateJS, hidden), nil),
		chromedp.Click("#btnShow"),
	)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			return nil, ErrBlocked
		}
		return nil, fmt.Errorf("driving margin page for %s: %w", date, err)
	}

	select {
	case body := <-bodyCh:
		raws, err := ParseResponse(body)
		if err != nil {
			return nil, fmt.Errorf("parsing margin response for %s: %w", date, err)
		}
		var recs []domain.MarginRecord
		for _, raw := range raws {
			if rec := Normalize(raw, date); rec != nil {
				recs = append(recs, *rec)
			}
		}
		s.log.Info("fetched margin data", "date", date, "raw", len(raws), "normalized", len(recs))
		return recs, nil
	case <-tctx.Done():
		return nil, fmt.Errorf("%w (date %s)", ErrNoResponse, date)
	}
}

// checkNotBlocked fails the run when the previously captured title is the
// bot-detection interstitial.
func checkNotBlocked(title *string) chromedp.Action {
	return chromedp.ActionFunc(func(context.Context) error {
		if strings.Contains(*title, "Access Denied") {
			return ErrBlocked
		}
		return nil
	})
}
