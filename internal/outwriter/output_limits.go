package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// limitRow is one line of the limits table.
type limitRow struct {
	Metal    schema.MetalKind `json:"metal"`
	Symbol   string           `json:"symbol"`
	Limit    float64          `json:"limit_mg_l"`
	Weight   *float64         `json:"wi"`
	Keywords []string         `json:"keywords"`
}

// buildLimitRows lists every canonical metal. Unregulated metals have no weight.
func buildLimitRows(limits schema.StandardLimits, weights map[schema.MetalKind]float64) []limitRow {
	rows := make([]limitRow, 0, len(schema.AllMetals))
	for _, m := range schema.AllMetals {
		row := limitRow{
			Metal:    m,
			Symbol:   m.Symbol(),
			Limit:    limits[m],
			Keywords: schema.MetalKeywords[m],
		}
		if w, ok := weights[m]; ok {
			rounded := schema.Round4(w)
			row.Weight = &rounded
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteLimits outputs the effective standard limits with the unit weight each
// metal would carry if every regulated metal were detected.
func WriteLimits(limits schema.StandardLimits, weights map[schema.MetalKind]float64, cfg *contract.Config) error {
	rows := buildLimitRows(limits, weights)
	fmtFloat, fmtOpt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"metal", "symbol", "limit_mg_l", "wi", "keywords"}, func(cw *csv.Writer) error {
				for _, r := range rows {
					rec := []string{string(r.Metal), r.Symbol, fmt.Sprint(r.Limit), fmtOpt(r.Weight), strings.Join(r.Keywords, "|")}
					if err := cw.Write(rec); err != nil {
						return fmt.Errorf("failed to write CSV record: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLimitsTable(w, rows, cfg, fmtFloat)
		}, "Wrote text")
	default:
		return unsupportedMode(cfg.Output, "limits")
	}
}

func writeLimitsTable(w io.Writer, rows []limitRow, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "%s\n", heading("📏", "Standard limits", cfg)); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metal", "Symbol", "Limit (mg/L)", "Wi", "Keywords"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	var data [][]string
	for _, r := range rows {
		wi := contract.UndefinedValue
		if r.Weight != nil {
			wi = fmtFloat(*r.Weight)
		}
		data = append(data, []string{string(r.Metal), r.Symbol, fmt.Sprint(r.Limit), wi, strings.Join(r.Keywords, ", ")})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "HMPI = sum of Wi * (Ci / Si) * 100 over detected metals; Wi = (1/Si) / sum(1/Sm)")
	return err
}
