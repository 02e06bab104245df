package algo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/hmpi/schema"
	"github.com/montanaflynn/stats"
)

// DefaultForecastColumn is the value column written by the forecasting model.
const DefaultForecastColumn = "Predicted_HMPI_Ensemble"

// forecastGroup accumulates the rows of one sample.
type forecastGroup struct {
	id       string
	lat, lon schema.Reading
	values   []float64
}

// ForecastPoints builds clustering inputs from a table of per-sample
// forecasts. Rows are grouped by sample id and groups are ordered by id. Each
// group takes the first available latitude and the first available longitude
// independently, and the mean of its values.
// Groups without coordinates or without any value are skipped and counted.
func ForecastPoints(table schema.RawTable, valueColumn string) ([]schema.ClusterPoint, int, error) {
	cm := schema.NewColumnMapping()
	normalized, _ := locateReserved(table.Headers, &cm)

	want := schema.NormalizeHeader(valueColumn)
	valueIdx := -1
	for i, n := range normalized {
		if n == want {
			valueIdx = i
			break
		}
	}
	if valueIdx < 0 {
		return nil, 0, dataError(fmt.Sprintf("value column %q not found", valueColumn))
	}

	var order []*forecastGroup
	groups := make(map[string]*forecastGroup)
	nextID := 1
	for _, row := range table.Rows {
		id := strings.TrimSpace(cell(row, cm.IDColumn))
		if id == "" {
			id = "S" + strconv.Itoa(nextID)
			nextID++
		}
		g, ok := groups[id]
		if !ok {
			g = &forecastGroup{id: id}
			groups[id] = g
			order = append(order, g)
		}
		if !g.lat.Valid {
			g.lat = parseCell(cell(row, cm.LatColumn))
		}
		if !g.lon.Valid {
			g.lon = parseCell(cell(row, cm.LonColumn))
		}
		if v := parseCell(cell(row, valueIdx)); v.Valid {
			g.values = append(g.values, v.Value)
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].id < order[j].id })

	points := make([]schema.ClusterPoint, 0, len(order))
	skipped := 0
	for _, g := range order {
		if !g.lat.Valid || !g.lon.Valid || len(g.values) == 0 {
			skipped++
			continue
		}
		mean, err := stats.Mean(g.values)
		if err != nil {
			return nil, 0, computationError(fmt.Sprintf("mean forecast for %s", g.id), err)
		}
		points = append(points, schema.ClusterPoint{
			ID:    g.id,
			Lat:   g.lat.Value,
			Lon:   g.lon.Value,
			Value: mean,
		})
	}
	return points, skipped, nil
}
