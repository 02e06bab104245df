package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/hmpi/schema"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Cluster labels.
const (
	noiseLabel     = -1
	unvisitedLabel = -2
)

// ClusterOptions holds the density clustering parameters.
type ClusterOptions struct {
	Eps    float64 // neighborhood radius in standardized feature space
	MinPts int     // neighbors required for a core point, counting the point itself
}

// DefaultClusterOptions returns eps 1.2 and minPts 2.
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{Eps: schema.DefaultEps, MinPts: schema.DefaultMinPts}
}

// Standardize z-scores each feature column using the population standard
// deviation. A column with zero variance becomes all zeros.
func Standardize(features [][]float64) ([][]float64, error) {
	n := len(features)
	if n == 0 {
		return nil, nil
	}
	dims := len(features[0])
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, dims)
	}

	col := make([]float64, n)
	for d := range dims {
		for i, row := range features {
			col[i] = row[d]
		}
		mean, err := stats.Mean(col)
		if err != nil {
			return nil, computationError("feature mean", err)
		}
		std, err := stats.StandardDeviationPopulation(col)
		if err != nil {
			return nil, computationError("feature standard deviation", err)
		}
		if std == 0 || math.IsNaN(std) {
			continue
		}
		for i := range out {
			out[i][d] = (col[i] - mean) / std
		}
	}
	return out, nil
}

// regionQuery returns the indexes of every point within eps of point i,
// including i itself.
func regionQuery(points [][]float64, i int, eps float64) []int {
	var out []int
	for j, p := range points {
		if floats.Distance(points[i], p, 2) <= eps {
			out = append(out, j)
		}
	}
	return out
}

// dbscan labels every point with a cluster id or noiseLabel. Points are visited
// in input order and clusters are numbered in discovery order. A border point
// reachable from two clusters keeps the first cluster that reached it.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisitedLabel
	}

	cluster := 0
	for i := range points {
		if labels[i] != unvisitedLabel {
			continue
		}
		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			labels[i] = noiseLabel
			continue
		}

		labels[i] = cluster
		queue := neighbors
		for k := 0; k < len(queue); k++ {
			j := queue[k]
			if labels[j] == noiseLabel {
				labels[j] = cluster // border point
			}
			if labels[j] != unvisitedLabel {
				continue
			}
			labels[j] = cluster
			if jn := regionQuery(points, j, eps); len(jn) >= minPts {
				queue = append(queue, jn...)
			}
		}
		cluster++
	}
	return labels
}

// Cluster groups points into risk zones. Features are (lat, lon, value),
// standardized per column, then clustered with DBSCAN. Noise points are left out
// of the zones. Fewer points than MinPts yields no zones and no error.
func Cluster(points []schema.ClusterPoint, opts ClusterOptions) (schema.ClusterResult, error) {
	if opts.Eps <= 0 {
		return schema.ClusterResult{}, dataError(fmt.Sprintf("eps must be positive (received %v)", opts.Eps))
	}
	if opts.MinPts < 1 {
		return schema.ClusterResult{}, dataError(fmt.Sprintf("min-pts must be at least 1 (received %d)", opts.MinPts))
	}

	res := schema.ClusterResult{
		Eps:    opts.Eps,
		MinPts: opts.MinPts,
		Labels: make([]int, len(points)),
	}
	if len(points) < opts.MinPts {
		for i := range res.Labels {
			res.Labels[i] = noiseLabel
		}
		res.Noise = len(points)
		return res, nil
	}

	features := make([][]float64, len(points))
	for i, p := range points {
		features[i] = []float64{p.Lat, p.Lon, p.Value}
	}
	scaled, err := Standardize(features)
	if err != nil {
		return schema.ClusterResult{}, err
	}

	res.Labels = dbscan(scaled, opts.Eps, opts.MinPts)
	res.Zones = buildZones(points, res.Labels)
	for _, l := range res.Labels {
		if l == noiseLabel {
			res.Noise++
		}
	}
	return res, nil
}

// buildZones summarizes each cluster in label order.
func buildZones(points []schema.ClusterPoint, labels []int) []schema.ClusterZone {
	count := 0
	for _, l := range labels {
		count = max(count, l+1)
	}
	zones := make([]schema.ClusterZone, count)
	for i := range zones {
		zones[i].ClusterID = i
	}
	for i, l := range labels {
		if l < 0 {
			continue
		}
		zones[l].Points = append(zones[l].Points, points[i])
	}

	for i := range zones {
		values := make([]float64, len(zones[i].Points))
		for j, p := range zones[i].Points {
			values[j] = p.Value
		}
		zones[i].AvgValue = stat.Mean(values, nil)
		zones[i].Category = Classify(zones[i].AvgValue)
		zones[i].Color = schema.RiskColor(zones[i].Category)
	}
	return zones
}

// PointsFromResults returns a clustering input for every sample that has
// coordinates and a defined index. The second value counts skipped samples.
func PointsFromResults(results []schema.SampleResult) ([]schema.ClusterPoint, int) {
	points := make([]schema.ClusterPoint, 0, len(results))
	skipped := 0
	for _, r := range results {
		if r.Sample.Coords == nil || !r.Defined {
			skipped++
			continue
		}
		points = append(points, schema.ClusterPoint{
			ID:    r.Sample.ID,
			Lat:   r.Sample.Coords.Lat,
			Lon:   r.Sample.Coords.Lon,
			Value: r.HMPI,
		})
	}
	return points, skipped
}
