package algo

import (
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/hmpi/schema"
)

// Normalized names of the non-metal columns.
const (
	sampleIDHeader  = "sampleid"
	locationHeader  = "location"
	latitudeHeader  = "latitude"
	longitudeHeader = "longitude"
)

// matchKeyword reports whether a normalized header matches a normalized keyword.
func matchKeyword(header, keyword string, mode schema.MatchMode) bool {
	if keyword == "" {
		return false
	}
	if mode == schema.ExactMatch {
		return header == keyword
	}
	return strings.Contains(header, keyword)
}

// locateReserved finds the sample id, location, latitude and longitude columns.
// It returns the normalized headers and marks the positions it claimed.
func locateReserved(headers []string, cm *schema.ColumnMapping) ([]string, []bool) {
	normalized := make([]string, len(headers))
	reserved := make([]bool, len(headers))
	claim := func(dst *int, i int) {
		if *dst < 0 {
			*dst = i
		}
		reserved[i] = true
	}
	for i, h := range headers {
		n := schema.NormalizeHeader(h)
		normalized[i] = n
		switch {
		case n == sampleIDHeader:
			claim(&cm.IDColumn, i)
		case strings.Contains(n, locationHeader):
			claim(&cm.LocColumn, i)
		case strings.Contains(n, latitudeHeader):
			claim(&cm.LatColumn, i)
		case strings.Contains(n, longitudeHeader):
			claim(&cm.LonColumn, i)
		}
	}
	return normalized, reserved
}

// MapColumns interprets the raw headers of a table. Metal columns are detected
// in canonical metal order; one header may feed several metals under substring
// matching (e.g. "arsenic" also contains "ni"). Sample id, location, latitude and
// longitude columns are detected by name and never treated as metals; the first
// header that matches each wins.
func MapColumns(headers []string, keywords map[schema.MetalKind][]string, mode schema.MatchMode) (schema.ColumnMapping, error) {
	cm := schema.NewColumnMapping()
	normalized, reserved := locateReserved(headers, &cm)

	matched := make([]bool, len(headers))
	for _, metal := range schema.AllMetals {
		kws := keywords[metal]
		for i, h := range normalized {
			if reserved[i] || h == "" {
				continue
			}
			for _, kw := range kws {
				if matchKeyword(h, schema.NormalizeHeader(kw), mode) {
					cm.AddColumn(metal, i, headers[i])
					matched[i] = true
					break
				}
			}
		}
	}

	for i, h := range headers {
		if !reserved[i] && !matched[i] {
			cm.Unmatched = append(cm.Unmatched, h)
		}
	}

	if len(cm.Metals) == 0 {
		return cm, ErrNoMetalColumns
	}
	return cm, nil
}

// parseCell parses a numeric cell. Blank, NA-like and non-finite cells have no value.
func parseCell(s string) schema.Reading {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null", "none", "-":
		return schema.None()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return schema.None()
	}
	return schema.Some(v)
}

// cell returns row[idx], or "" when idx is out of range.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// BuildSamples turns the rows of a table into samples using a column mapping.
// Duplicate columns for one metal are summed per row; a row where every merged
// column is blank has no value for that metal. Rows without a sample id get
// sequential ids S1, S2, ... counted over those rows only.
func BuildSamples(table schema.RawTable, cm schema.ColumnMapping) []schema.Sample {
	samples := make([]schema.Sample, 0, len(table.Rows))
	nextID := 1
	for _, row := range table.Rows {
		s := schema.Sample{
			ID:       strings.TrimSpace(cell(row, cm.IDColumn)),
			Location: strings.TrimSpace(cell(row, cm.LocColumn)),
			Readings: make(map[schema.MetalKind]schema.Reading, len(cm.Metals)),
		}
		if s.ID == "" {
			s.ID = "S" + strconv.Itoa(nextID)
			nextID++
		}

		lat, lon := parseCell(cell(row, cm.LatColumn)), parseCell(cell(row, cm.LonColumn))
		if lat.Valid && lon.Valid {
			s.Coords = &schema.Coordinates{Lat: lat.Value, Lon: lon.Value}
		}

		for _, metal := range cm.Metals {
			sum := schema.None()
			for _, idx := range cm.ColumnIndexes(metal) {
				r := parseCell(cell(row, idx))
				if !r.Valid {
					continue
				}
				sum = schema.Some(sum.Value + r.Value)
			}
			s.Readings[metal] = sum
		}
		samples = append(samples, s)
	}
	return samples
}
