package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"mcxmargin/internal/domain"
	"mcxmargin/internal/store"
)

const (
	marginSheet  = "Daily Margins"
	summarySheet = "Summary"
)

// WriteExcel exports the records and per-symbol summary to a two-sheet xlsx
// workbook at path.
func WriteExcel(path string, recs []domain.MarginRecord, sums []store.SymbolSummary) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", marginSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := writeMarginSheet(f, recs); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, sums); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeMarginSheet(f *excelize.File, recs []domain.MarginRecord) error {
	sw, err := f.NewStreamWriter(marginSheet)
	if err != nil {
		return fmt.Errorf("opening stream writer: %w", err)
	}

	header := []any{
		"Date", "Symbol", "Expiry", "Instrument", "File ID",
		"Initial Margin %", "ELM %", "Tender Margin %", "Total Margin %",
		"Additional Long %", "Additional Short %", "Special Long %", "Special Short %",
		"Delivery Margin %", "Daily Volatility", "Annualized Volatility",
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell: %w", err)
		}
		row := []any{
			r.Date, r.Symbol, r.Expiry, r.InstrumentID, r.FileID,
			cellPct(r.InitialMarginPct), cellPct(r.ELMPct), cellPct(r.TenderMarginPct),
			cellPct(r.TotalMarginPct), cellPct(r.AdditionalLongPct), cellPct(r.AdditionalShortPct),
			cellPct(r.SpecialLongPct), cellPct(r.SpecialShortPct), cellPct(r.DeliveryMarginPct),
			cellPct(r.DailyVolatility), cellPct(r.AnnualizedVolatility),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing margin sheet: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, sums []store.SymbolSummary) error {
	header := []any{
		"Symbol", "Records", "Earliest", "Latest",
		"Avg Initial Margin %", "Min Initial Margin %", "Max Initial Margin %",
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for i, s := range sums {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell: %w", err)
		}
		row := []any{
			s.Symbol, s.RecordCount, s.EarliestDate, s.LatestDate,
			s.AvgInitialMargin, s.MinInitialMargin, s.MaxInitialMargin,
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+2, err)
		}
	}
	return nil
}

// cellPct maps an absent percentage to an empty cell rather than zero, so
// spreadsheet aggregates stay honest.
func cellPct(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
