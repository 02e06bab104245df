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

// ContributionReport is the chart data for one dataset: the per-sample
// breakdowns and the distribution of samples over risk categories.
type ContributionReport struct {
	Result       schema.IndexResult
	Breakdowns   []schema.ContributionBreakdown
	Distribution schema.RiskDistribution
}

// contributionOutput is the JSON document for a ContributionReport.
type contributionOutput struct {
	Source       string                         `json:"source"`
	Distribution schema.RiskDistribution        `json:"distribution"`
	Samples      []schema.ContributionBreakdown `json:"samples"`
}

// roundBreakdown rounds the index values of b to the output precision.
func roundBreakdown(b schema.ContributionBreakdown) schema.ContributionBreakdown {
	out := b
	out.HMPI = schema.Round4(b.HMPI)
	out.Contributions = make([]schema.Contribution, len(b.Contributions))
	for i, c := range b.Contributions {
		out.Contributions[i] = schema.Contribution{
			Metal:   c.Metal,
			SIi:     schema.Round4(c.SIi),
			Percent: schema.Round4(c.Percent),
		}
	}
	out.Radar = make([]schema.RadarPoint, len(b.Radar))
	for i, p := range b.Radar {
		out.Radar[i] = schema.RadarPoint{
			Metal:         p.Metal,
			Concentration: schema.Round4(p.Concentration),
			Limit:         schema.Round4(p.Limit),
		}
	}
	return out
}

// WriteContributions outputs chart data for each report.
// CSV output is the per-sample chart table with {metal}_Actual and {metal}_Limit columns.
func WriteContributions(reports []ContributionReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContribJSON(w, reports)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartCSV(w, reports)
		}, "Wrote CSV")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, rep := range reports {
				if err := writeContribText(w, rep, cfg, fmtFloat); err != nil {
					return err
				}
			}
			return nil
		}, "Wrote text")
	default:
		return unsupportedMode(cfg.Output, "contributions")
	}
}

func writeContribJSON(w io.Writer, reports []ContributionReport) error {
	out := make([]contributionOutput, len(reports))
	for i, rep := range reports {
		samples := make([]schema.ContributionBreakdown, len(rep.Breakdowns))
		for j, b := range rep.Breakdowns {
			samples[j] = roundBreakdown(b)
		}
		out[i] = contributionOutput{
			Source:       rep.Result.Source,
			Distribution: rep.Distribution,
			Samples:      samples,
		}
	}
	return writeJSON(w, out)
}

// writeChartCSV writes the bar and radar chart table. Values use four decimals
// and absent concentrations are empty. Pie_Values joins the present concentrations.
func writeChartCSV(w io.Writer, reports []ContributionReport) error {
	results := make([]schema.IndexResult, len(reports))
	for i, rep := range reports {
		results[i] = rep.Result
	}
	metals := unionMetals(results)

	header := []string{"Sample_ID", "HMPI", "Risk_Category"}
	for _, m := range metals {
		header = append(header, string(m)+"_Actual", string(m)+"_Limit")
	}
	header = append(header, "Pie_Values")

	fmt4, fmtOpt := createFormatters(schema.IndexPrecision)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, res := range results {
			for _, r := range res.Samples {
				var hmpi *float64
				if r.Defined {
					hmpi = &r.HMPI
				}
				rec := []string{r.Sample.ID, fmtOpt(hmpi), string(r.Category)}
				var pie []string
				for _, m := range metals {
					mi, ok := r.Index(m)
					if !ok {
						rec = append(rec, "", "")
						continue
					}
					actual := ""
					if mi.Valid {
						actual = fmt4(mi.Ci)
						pie = append(pie, actual)
					}
					rec = append(rec, actual, fmt4(mi.Si))
				}
				rec = append(rec, strings.Join(pie, ","))
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// writeContribText writes one contribution table per explained sample, then the distribution.
func writeContribText(w io.Writer, rep ContributionReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "%s\n", heading("📊", rep.Result.Source, cfg)); err != nil {
		return err
	}

	for _, b := range rep.Breakdowns {
		if _, err := fmt.Fprintf(w, "\nSample %s: HMPI %s (%s)\n", b.SampleID, fmtFloat(b.HMPI), riskLabel(b.Category, cfg)); err != nil {
			return err
		}
		limits := make(map[schema.MetalKind]schema.RadarPoint, len(b.Radar))
		for _, p := range b.Radar {
			limits[p.Metal] = p
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Metal", "Conc (mg/L)", "Limit (mg/L)", "SIi", "Share %"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, c := range b.Contributions {
			p := limits[c.Metal]
			data = append(data, []string{
				string(c.Metal),
				fmtFloat(p.Concentration),
				fmtFloat(p.Limit),
				fmtFloat(c.SIi),
				fmtFloat(c.Percent),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	d := rep.Distribution
	skipped := len(rep.Result.Samples) - len(rep.Breakdowns)
	_, err := fmt.Fprintf(w, "\nDistribution: safe %d, moderate %d, high %d, undefined %d (%d samples without a breakdown)\n\n",
		d.Safe, d.Moderate, d.High, d.Undefined, skipped)
	return err
}
