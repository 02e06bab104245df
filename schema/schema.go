// Package schema has the data types shared by the engine, the stores and the writers.
package schema

// RawTable is a header row plus string cells, as read from a CSV or XLSX file.
type RawTable struct {
	Source  string     // file the table was read from
	Headers []string   // header row, in file order
	Rows    [][]string // data rows; short rows are padded with empty cells by readers
}

// Reading is an optional numeric value. Valid is false when no value is present.
type Reading struct {
	Value float64
	Valid bool
}

// Some returns a present reading.
func Some(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// None returns an absent reading.
func None() Reading {
	return Reading{}
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Sample is one row of water-quality data.
type Sample struct {
	ID       string
	Location string
	Coords   *Coordinates
	Readings map[MetalKind]Reading
}

// ColumnMapping describes how the raw headers of a table were interpreted.
type ColumnMapping struct {
	Metals      []MetalKind            // detected metals, in detection order
	Columns     map[MetalKind][]string // raw headers merged into each metal
	columnIndex map[MetalKind][]int    // column positions merged into each metal
	IDColumn    int                    // -1 when absent
	LocColumn   int                    // -1 when absent
	LatColumn   int                    // -1 when absent
	LonColumn   int                    // -1 when absent
	Unmatched   []string               // headers that mapped to nothing
}

// NewColumnMapping creates an empty mapping with every optional column absent.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{
		Columns:     make(map[MetalKind][]string),
		columnIndex: make(map[MetalKind][]int),
		IDColumn:    -1,
		LocColumn:   -1,
		LatColumn:   -1,
		LonColumn:   -1,
	}
}

// AddColumn records that the header at position idx belongs to metal m.
func (cm *ColumnMapping) AddColumn(m MetalKind, idx int, header string) {
	if _, seen := cm.columnIndex[m]; !seen {
		cm.Metals = append(cm.Metals, m)
	}
	cm.Columns[m] = append(cm.Columns[m], header)
	cm.columnIndex[m] = append(cm.columnIndex[m], idx)
}

// ColumnIndexes returns the column positions merged into metal m.
func (cm *ColumnMapping) ColumnIndexes(m MetalKind) []int {
	return cm.columnIndex[m]
}

// Dataset is the set of samples for one request. Weights are scoped to it.
type Dataset struct {
	ID      string
	Source  string
	Samples []Sample
	Mapping ColumnMapping
}

// Metals returns the detected metal set.
func (d *Dataset) Metals() []MetalKind {
	return d.Mapping.Metals
}

// MetalIndex holds the per-metal terms for one sample. When Valid is false the
// sample had no value for the metal and only Si and Wi are meaningful.
type MetalIndex struct {
	Metal MetalKind
	Ci    float64 // concentration in mg/L after normalization and imputation
	Si    float64 // standard limit
	Qi    float64 // sub-index
	Wi    float64 // unit weight
	SIi   float64 // weighted sub-index
	Valid bool
}

// SampleResult is the computed index for one sample.
type SampleResult struct {
	Sample   Sample
	Indices  []MetalIndex // canonical metal order over the detected set
	HMPI     float64
	Defined  bool         // false when no detected metal had a value
	Category RiskCategory // empty when HMPI is undefined
}

// MetalCount returns the number of metals that contributed to the index.
func (r SampleResult) MetalCount() int {
	n := 0
	for _, mi := range r.Indices {
		if mi.Valid {
			n++
		}
	}
	return n
}

// Index returns the term for metal m.
func (r SampleResult) Index(m MetalKind) (MetalIndex, bool) {
	for _, mi := range r.Indices {
		if mi.Metal == m {
			return mi, true
		}
	}
	return MetalIndex{}, false
}

// IndexResult is the outcome of an index computation over a dataset.
type IndexResult struct {
	DatasetID string
	Source    string
	Strategy  ImputationStrategy
	Metals    []MetalKind
	Weights   map[MetalKind]float64
	Converted []MetalKind       // metals whose column was rescaled from ug/L
	Imputed   map[MetalKind]int // filled cells per metal
	Samples   []SampleResult
}

// ClusterPoint is one input to the spatial clusterer.
type ClusterPoint struct {
	ID    string  `json:"sample_id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Value float64 `json:"value"`
}

// ClusterZone is one discovered risk zone.
type ClusterZone struct {
	ClusterID int            `json:"cluster_id"`
	AvgValue  float64        `json:"avg_value"`
	Category  RiskCategory   `json:"risk_category"`
	Color     string         `json:"color"`
	Points    []ClusterPoint `json:"points"`
}

// ClusterResult is the outcome of a clustering request.
type ClusterResult struct {
	Eps     float64
	MinPts  int
	Labels  []int // per clustered point, -1 for noise
	Zones   []ClusterZone
	Noise   int
	Skipped int // samples excluded for missing coordinates or value
}

// Contribution is one metal's share of a sample's index.
type Contribution struct {
	Metal   MetalKind `json:"metal"`
	SIi     float64   `json:"sii"`
	Percent float64   `json:"percent"`
}

// RadarPoint pairs a concentration with its limit.
type RadarPoint struct {
	Metal         MetalKind `json:"metal"`
	Concentration float64   `json:"concentration"`
	Limit         float64   `json:"limit"`
}

// ContributionBreakdown explains a single sample's index.
type ContributionBreakdown struct {
	SampleID      string         `json:"sample_id"`
	HMPI          float64        `json:"hmpi"`
	Category      RiskCategory   `json:"risk_category"`
	Contributions []Contribution `json:"contributions"`
	Radar         []RadarPoint   `json:"radar"` // closed: first point repeated at the end
}

// RiskDistribution counts samples per category.
type RiskDistribution struct {
	Safe      int `json:"safe"`
	Moderate  int `json:"moderate"`
	High      int `json:"high"`
	Undefined int `json:"undefined"`
}

// Add counts one sample of category c.
func (d *RiskDistribution) Add(c RiskCategory) {
	switch c {
	case SafeRisk:
		d.Safe++
	case ModerateRisk:
		d.Moderate++
	case HighRisk:
		d.High++
	default:
		d.Undefined++
	}
}

// Total returns the number of counted samples.
func (d RiskDistribution) Total() int {
	return d.Safe + d.Moderate + d.High + d.Undefined
}
