// Package xlsx exports cost basis summaries as an Excel workbook.
package xlsx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/costbasis"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

var lotHeaders = []string{"Date", "Shares", "Price (USD)", "FX (GBP/USD)", "Cost (USD)", "Cost (GBP)", "Days", "Holding"}

// Exporter writes one sheet per security: a summary block followed by the lot table.
type Exporter struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Exporter {
	return &Exporter{log: log.With().Str("component", "xlsx").Logger()}
}

// Export returns the workbook bytes.
func (e *Exporter) Export(summaries []costbasis.Summary) ([]byte, error) {
	if len(summaries) == 0 {
		return nil, errors.New("empty summaries")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.log.Error().Err(err).Msg("got error while closing file")
		}
	}()

	for i, s := range summaries {
		if err := e.fillSheet(f, s, i+1); err != nil {
			return nil, fmt.Errorf("sheet for %q: %w", s.Symbol, err)
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		e.log.Error().Err(err).Msg("got error while deleting default sheet")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not write workbook: %w", err)
	}
	e.log.Debug().Int("sheets", len(summaries)).Int("bytes", buf.Len()).Msg("workbook exported")
	return buf.Bytes(), nil
}

// maxSheetName is excel's limit, in characters.
const maxSheetName = 31

// sheetNameReplacer replaces the characters excel rejects in sheet names.
var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")",
)

// SheetName returns the name of the sheet of the ordinal-th summary.
func SheetName(ordinal int, symbol string) string {
	name := sheetNameReplacer.Replace(fmt.Sprintf("%d. %s", ordinal, symbol))
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return strings.TrimRight(name, "'") // cannot end with an apostrophe
}

func (e *Exporter) fillSheet(f *excelize.File, s costbasis.Summary, ordinal int) error {
	sheet := SheetName(ordinal, s.Symbol)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return err
	}

	rows := [][]any{
		{"Symbol", s.Symbol},
		{"As of", s.AsOf.String()},
		{"Lots", s.LotCount()},
		{"Total shares", num(s.TotalShares.Decimal())},
		{"Total cost (USD)", cents(s.TotalCostUSD)},
		{"Total cost (GBP)", cents(s.TotalCostGBP)},
		{"Average cost (USD)", cents(s.AverageCostUSD)},
		{"Average cost (GBP)", cents(s.AverageCostGBP)},
		{"Weighted average FX", num(s.WeightedAverageFXRate.Decimal())},
		{"Short-term shares", num(s.ShortTermShares.Decimal())},
		{"Long-term shares", num(s.LongTermShares.Decimal())},
		{"Long-term %", num(s.LongTermPercentage.Decimal().Round(2))},
	}
	if p, ok := s.Pricing(); ok {
		rows = append(rows,
			[]any{"Current price (USD)", cents(p.CurrentPriceUSD)},
			[]any{"Current FX", num(p.CurrentFXRate.Decimal())},
			[]any{"Unrealized P&L (USD)", cents(p.UnrealizedPnLUSD)},
			[]any{"Unrealized P&L (GBP)", cents(p.UnrealizedPnLGBP)},
			[]any{"Unrealized P&L %", num(p.UnrealizedPnLPercentage.Decimal().Round(2))},
			[]any{"Short-term P&L (USD)", cents(p.ShortTermUnrealizedPnLUSD)},
			[]any{"Long-term P&L (USD)", cents(p.LongTermUnrealizedPnLUSD)},
		)
	}

	row := 1
	for _, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return err
		}
		row++
	}

	row++ // blank line
	start, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, start, &lotHeaders); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(lotHeaders), row)
	if err := f.SetCellStyle(sheet, start, end, bold); err != nil {
		return err
	}

	for _, l := range s.SortedLots() {
		row++
		values := []any{
			l.Date.String(),
			num(l.Shares.Decimal()),
			num(l.PriceUSD.Decimal()),
			num(l.FXRate.Decimal()),
			cents(l.TotalUSD()),
			cents(l.TotalGBP()),
			l.HoldingDays(s.AsOf),
			l.HoldingPeriod(s.AsOf).String(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// cents rounds for display: spreadsheet cells are binary floating point anyway.
func cents(m costbasis.Money) float64 { return m.Round().Decimal().InexactFloat64() }

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }
