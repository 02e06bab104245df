package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/parquet"
	"github.com/huangsam/hmpi/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// datasetOutput is the JSON document for one scored dataset.
type datasetOutput struct {
	DatasetID string                       `json:"dataset_id"`
	Source    string                       `json:"source"`
	Strategy  schema.ImputationStrategy    `json:"strategy"`
	Metals    []schema.MetalKind           `json:"metals"`
	Weights   map[schema.MetalKind]float64 `json:"weights"`
	Converted []schema.MetalKind           `json:"unit_converted,omitempty"`
	Imputed   map[schema.MetalKind]int     `json:"imputed,omitempty"`
	Summary   schema.RiskDistribution      `json:"summary"`
	Samples   []schema.SampleOutput        `json:"samples"`
}

func newDatasetOutput(res schema.IndexResult) datasetOutput {
	weights := make(map[schema.MetalKind]float64, len(res.Weights))
	for m, w := range res.Weights {
		weights[m] = schema.Round4(w)
	}
	return datasetOutput{
		DatasetID: res.DatasetID,
		Source:    res.Source,
		Strategy:  res.Strategy,
		Metals:    res.Metals,
		Weights:   weights,
		Converted: res.Converted,
		Imputed:   res.Imputed,
		Summary:   distributionOf(res.Samples),
		Samples:   schema.NewSampleOutputs(res),
	}
}

func distributionOf(samples []schema.SampleResult) schema.RiskDistribution {
	var d schema.RiskDistribution
	for _, r := range samples {
		d.Add(r.Category)
	}
	return d
}

// WriteIndexResults outputs scored datasets, dispatching based on the output format configured.
func WriteIndexResults(results []schema.IndexResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOpt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIndexJSON(w, results)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIndexCSV(w, results, fmtFloat, fmtOpt)
		}, "Wrote CSV")
	case schema.GeoJSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIndexGeoJSON(w, results)
		}, "Wrote GeoJSON")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			var rows []parquet.IndexRow
			for _, res := range results {
				rows = append(rows, parquet.ConvertIndexResult(res, cfg.Precision)...)
			}
			return parquet.WriteRows(w, rows)
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, res := range results {
				if err := writeIndexTable(w, res, cfg, fmtFloat); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w, "Scored %d dataset(s) in %v with %d workers. Cache backend: %s\n",
				len(results), duration, cfg.Workers, cfg.CacheBackend)
			return err
		}, "Wrote table")
	}
}

func writeIndexJSON(w io.Writer, results []schema.IndexResult) error {
	out := make([]datasetOutput, len(results))
	for i, res := range results {
		out[i] = newDatasetOutput(res)
	}
	return writeJSON(w, out)
}

// unionMetals returns every metal scored in any of the results, in canonical order.
func unionMetals(results []schema.IndexResult) []schema.MetalKind {
	var out []schema.MetalKind
	for _, m := range schema.AllMetals {
		for _, res := range results {
			if slices.Contains(res.Metals, m) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// writeIndexCSV writes one row per sample with a concentration, Qi and SIi
// column per metal. Datasets with different metal sets share the union header.
func writeIndexCSV(w io.Writer, results []schema.IndexResult, fmtFloat func(float64) string, fmtOpt func(*float64) string) error {
	metals := unionMetals(results)
	header := []string{"source", "sample_id", "location", "latitude", "longitude"}
	for _, m := range metals {
		header = append(header, string(m)+"_conc", string(m)+"_qi", string(m)+"_sii")
	}
	header = append(header, "no_of_metals", "hmpi", "risk_category")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, res := range results {
			for _, r := range res.Samples {
				rec := []string{res.Source, r.Sample.ID, r.Sample.Location, "", ""}
				if c := r.Sample.Coords; c != nil {
					rec[3] = strconv.FormatFloat(c.Lat, 'f', -1, 64)
					rec[4] = strconv.FormatFloat(c.Lon, 'f', -1, 64)
				}
				for _, m := range metals {
					mi, ok := r.Index(m)
					if !ok || !mi.Valid {
						rec = append(rec, "", "", "")
						continue
					}
					rec = append(rec, fmtFloat(mi.Ci), fmtFloat(mi.Qi), fmtFloat(mi.SIi))
				}
				var hmpi *float64
				if r.Defined {
					hmpi = &r.HMPI
				}
				rec = append(rec, strconv.Itoa(r.MetalCount()), fmtOpt(hmpi), string(r.Category))
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// writeIndexTable generates and writes the human-readable table for one dataset.
func writeIndexTable(w io.Writer, res schema.IndexResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "%s (%s imputation, %d metals)\n",
		heading("🧪", res.Source, cfg), res.Strategy, len(res.Metals)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Sample", "Location", "Metals", "HMPI", "Risk"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	locWidth := GetMaxTableLocationWidth(cfg)
	var data [][]string
	for i, r := range res.Samples {
		hmpi := contract.UndefinedValue
		if r.Defined {
			hmpi = fmtFloat(r.HMPI)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Sample.ID,
			contract.TruncatePath(r.Sample.Location, locWidth),
			strconv.Itoa(r.MetalCount()),
			hmpi,
			riskLabel(r.Category, cfg),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	d := distributionOf(res.Samples)
	if _, err := fmt.Fprintf(w, "Showing %d samples (safe: %d, moderate: %d, high: %d, undefined: %d)\n",
		d.Total(), d.Safe, d.Moderate, d.High, d.Undefined); err != nil {
		return err
	}
	if len(res.Converted) > 0 {
		names := make([]string, len(res.Converted))
		for i, m := range res.Converted {
			names[i] = string(m)
		}
		if _, err := fmt.Fprintf(w, "Converted from ug/L: %s\n", strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	if filled := formatImputed(res.Imputed); filled != "" {
		if _, err := fmt.Fprintf(w, "Imputed cells: %s\n", filled); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// formatImputed renders the filled-cell counts in canonical metal order.
func formatImputed(imputed map[schema.MetalKind]int) string {
	var parts []string
	for _, m := range schema.AllMetals {
		if n := imputed[m]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", m, n))
		}
	}
	return strings.Join(parts, ", ")
}
