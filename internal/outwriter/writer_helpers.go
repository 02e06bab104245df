package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "%s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters creates the number formatters shared by text and CSV output.
// Absent values render as an empty string in CSV and as N/A in tables.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtOpt func(*float64) string) {
	fmtFloat = func(v float64) string {
		return strconv.FormatFloat(schema.RoundTo(v, precision), 'f', precision, 64)
	}
	fmtOpt = func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmtFloat(*v)
	}
	return fmtFloat, fmtOpt
}

// riskLabel picks the colored or plain label depending on configuration.
func riskLabel(c schema.RiskCategory, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(c)
	}
	return contract.GetPlainLabel(c)
}

// heading returns title, with its emoji prefix when emojis are enabled.
func heading(emoji, title string, cfg *contract.Config) string {
	if cfg.UseEmojis && emoji != "" {
		return emoji + " " + title
	}
	return title
}

// unsupportedMode reports an output mode that a writer cannot produce.
func unsupportedMode(mode schema.OutputMode, what string) error {
	return fmt.Errorf("output mode %q is not supported for %s", mode, what)
}
