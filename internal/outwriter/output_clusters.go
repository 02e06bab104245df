package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/parquet"
	"github.com/huangsam/hmpi/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteClusterResults outputs risk zones, dispatching based on the output format configured.
func WriteClusterResults(res schema.ClusterResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.NewClusterOutput(res))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClusterCSV(w, res, fmtFloat)
		}, "Wrote CSV")
	case schema.GeoJSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClusterGeoJSON(w, res)
		}, "Wrote GeoJSON")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertClusterResult(res))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClusterTable(w, res, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeClusterCSV writes one row per clustered point.
func writeClusterCSV(w io.Writer, res schema.ClusterResult, fmtFloat func(float64) string) error {
	header := []string{"cluster_id", "avg_hmpi", "risk_category", "color", "sample_id", "latitude", "longitude", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, z := range res.Zones {
			avg := strconv.FormatFloat(schema.RoundTo(z.AvgValue, schema.ClusterPrecision), 'f', schema.ClusterPrecision, 64)
			for _, p := range z.Points {
				rec := []string{
					strconv.Itoa(z.ClusterID),
					avg,
					string(z.Category),
					z.Color,
					p.ID,
					strconv.FormatFloat(p.Lat, 'f', -1, 64),
					strconv.FormatFloat(p.Lon, 'f', -1, 64),
					fmtFloat(p.Value),
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// writeClusterTable writes one table row per zone followed by a summary line.
func writeClusterTable(w io.Writer, res schema.ClusterResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "%s (eps %.2f, min points %d)\n", heading("🗺️", "Risk zones", cfg), res.Eps, res.MinPts); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Zone", "Avg HMPI", "Risk", "Points", "Center", "Color"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, z := range res.Zones {
		lat, lon := zoneCenter(z)
		data = append(data, []string{
			strconv.Itoa(z.ClusterID),
			strconv.FormatFloat(schema.RoundTo(z.AvgValue, schema.ClusterPrecision), 'f', schema.ClusterPrecision, 64),
			riskLabel(z.Category, cfg),
			strconv.Itoa(len(z.Points)),
			fmt.Sprintf("%s, %s", fmtFloat(lat), fmtFloat(lon)),
			z.Color,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Found %d zones (noise: %d, skipped: %d)\n", len(res.Zones), res.Noise, res.Skipped); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Clustering completed in %v\n", duration)
	return err
}
