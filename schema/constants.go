package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and tracking.
	DatabaseBackend string

	// MetalKind is the canonical name of a regulated heavy metal.
	MetalKind string

	// RiskCategory is the bucket an index value falls into.
	RiskCategory string

	// ImputationStrategy selects how missing concentrations are filled.
	ImputationStrategy string

	// MatchMode selects how raw headers are matched against metal keywords.
	MatchMode string

	// SortOrder selects how sample results are ordered for display.
	SortOrder string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	GeoJSONOut OutputMode = "geojson"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Risk categories.
const (
	SafeRisk     RiskCategory = "Safe"
	ModerateRisk RiskCategory = "Moderate"
	HighRisk     RiskCategory = "High"
)

// Category thresholds. Both bounds are inclusive on the lower bucket.
const (
	SafeThreshold     = 60.0
	ModerateThreshold = 100.0
)

// Color tags attached to cluster zones.
const (
	SafeColor     = "#22c55e"
	ModerateColor = "#eab308"
	HighColor     = "#ef4444"
)

// Imputation strategies.
const (
	HalfImpute   ImputationStrategy = "half" // default
	ZeroImpute   ImputationStrategy = "zero"
	MeanImpute   ImputationStrategy = "mean"
	MedianImpute ImputationStrategy = "median"
	NoImpute     ImputationStrategy = "none"
)

// Match modes.
const (
	SubstringMatch MatchMode = "substring" // default
	ExactMatch     MatchMode = "exact"
)

// Sort orders.
const (
	InputOrder SortOrder = "input" // default
	HMPIOrder  SortOrder = "hmpi"
)

// Clustering defaults.
const (
	DefaultEps    = 1.2
	DefaultMinPts = 2
)

// AllRiskCategories lists the categories from least to most severe.
var AllRiskCategories = []RiskCategory{SafeRisk, ModerateRisk, HighRisk}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	GeoJSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidImputationStrategies lists all valid imputation strategies.
var ValidImputationStrategies = map[ImputationStrategy]struct{}{
	HalfImpute:   {},
	ZeroImpute:   {},
	MeanImpute:   {},
	MedianImpute: {},
	NoImpute:     {},
}

// ValidMatchModes lists all valid match modes.
var ValidMatchModes = map[MatchMode]struct{}{
	SubstringMatch: {},
	ExactMatch:     {},
}

// ValidSortOrders lists all valid sort orders.
var ValidSortOrders = map[SortOrder]struct{}{
	InputOrder: {},
	HMPIOrder:  {},
}

// RiskColor returns the color tag for a category.
func RiskColor(c RiskCategory) string {
	switch c {
	case HighRisk:
		return HighColor
	case ModerateRisk:
		return ModerateColor
	default:
		return SafeColor
	}
}
