package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/hmpi/schema"
)

// UndefinedValue labels a sample whose index could not be computed.
const UndefinedValue = "N/A"

// Color variables for console output.
var (
	HighColor      = color.New(color.FgRed, color.Bold) // contamination above 100
	ModerateColor  = color.New(color.FgYellow)
	SafeColor      = color.New(color.FgGreen)
	UndefinedColor = color.New(color.FgHiBlack)
)

// GetPlainLabel returns the plain text label for a risk category.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(c schema.RiskCategory) string {
	if c == "" {
		return UndefinedValue
	}
	return string(c)
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(c schema.RiskCategory) string {
	text := GetPlainLabel(c)

	switch c {
	case schema.HighRisk:
		return HighColor.Sprint(text)
	case schema.ModerateRisk:
		return ModerateColor.Sprint(text)
	case schema.SafeRisk:
		return SafeColor.Sprint(text)
	default:
		return UndefinedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ExpandInputs resolves glob patterns in the positional arguments. Plain paths
// are kept even when they do not exist so the loader can report them.
// Duplicates are dropped while keeping the first occurrence.
func ExpandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if !strings.ContainsAny(arg, "*?[") {
			if !slices.Contains(out, arg) {
				out = append(out, arg)
			}
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input pattern %q matched no files", arg)
		}
		for _, m := range matches {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hmpi_cache.db"
	}
	return filepath.Join(homeDir, ".hmpi_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hmpi_analysis.db"
	}
	return filepath.Join(homeDir, ".hmpi_analysis.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the prefix and one rune of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
