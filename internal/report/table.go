package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"mcxmargin/internal/domain"
	"mcxmargin/internal/store"
)

// RenderMargins writes a table of margin records to w.
func RenderMargins(w io.Writer, recs []domain.MarginRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Date", "Symbol", "Expiry", "IM%", "ELM%", "Total%", "Ann. Vol"})

	for _, r := range recs {
		t.AppendRow(table.Row{
			r.Date,
			r.Symbol,
			r.Expiry,
			FormatPct(r.InitialMarginPct),
			FormatPct(r.ELMPct),
			FormatPct(r.TotalMarginPct),
			FormatVol(r.AnnualizedVolatility),
		})
	}

	t.Render()
}

// RenderSummary writes the per-symbol aggregate table to w.
func RenderSummary(w io.Writer, sums []store.SymbolSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Count", "Earliest", "Latest", "Avg IM%", "Min IM%", "Max IM%"})

	var total int64
	for _, s := range sums {
		total += s.RecordCount
		t.AppendRow(table.Row{
			s.Symbol,
			FormatInt(s.RecordCount),
			s.EarliestDate,
			s.LatestDate,
			FormatPct(&s.AvgInitialMargin),
			FormatPct(&s.MinInitialMargin),
			FormatPct(&s.MaxInitialMargin),
		})
	}
	t.AppendFooter(table.Row{"TOTAL", FormatInt(total)})

	t.Render()
}
