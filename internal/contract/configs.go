package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strings"

	"github.com/huangsam/hmpi/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 0 // all samples
	MaxResultLimit     = 100000
	DefaultPrecision   = schema.IndexPrecision
	MaxPrecision       = schema.IndexPrecision
	DefaultValueColumn = "Predicted_HMPI_Ensemble"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for index and clustering requests.
// This struct is the "final, validated" config.
type Config struct {
	Inputs []string

	Strategy        schema.ImputationStrategy
	DetectionLimits map[schema.MetalKind]float64 // nil unless configured
	Match           schema.MatchMode
	Limits          schema.StandardLimits // defaults merged with overrides

	Eps         float64
	MinPts      int
	ValueColumn string // empty clusters computed indices instead of a forecast column

	Sort        schema.SortOrder
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	User string // token account charged for index requests; empty disables charging

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	Inputs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile        string `mapstructure:"output-file"`
	Limit             int    `mapstructure:"limit"`
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	Width             int    `mapstructure:"width"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`
	Strategy          string `mapstructure:"strategy"`
	MatchMode         string `mapstructure:"match-mode"`
	Sort              string `mapstructure:"sort"`

	// --- Fields from indexCmd.Flags() ---
	User string `mapstructure:"user"`

	// --- Fields from clustersCmd.Flags() ---
	Eps         float64 `mapstructure:"eps"`
	MinPts      int     `mapstructure:"min-pts"`
	ValueColumn string  `mapstructure:"value-column"`
	Forecast    bool    `mapstructure:"forecast"`

	// --- Maps from the config file ---
	Limits          map[string]float64 `mapstructure:"limits"`
	DetectionLimits map[string]float64 `mapstructure:"detection-limits"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Inputs != nil {
		clone.Inputs = make([]string, len(c.Inputs))
		copy(clone.Inputs, c.Inputs)
	}
	if c.DetectionLimits != nil {
		clone.DetectionLimits = maps.Clone(c.DetectionLimits)
	}
	if c.Limits != nil {
		clone.Limits = maps.Clone(c.Limits)
	}
	return &clone
}

// CloneWithInput creates a copy of the Config scoped to a single input file.
func (c *Config) CloneWithInput(path string) *Config {
	clone := c.Clone()
	clone.Inputs = []string{path}
	return clone
}

// ConfigParams returns the settings recorded alongside an analysis run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"inputs":     c.Inputs,
		"strategy":   c.Strategy,
		"match_mode": c.Match,
		"limits":     c.Limits,
		"user":       c.User,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEngineOptions(cfg, input); err != nil {
		return err
	}
	if err := processClusterOptions(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' with host:port")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis-db-connect: %w", err)
	}

	// Cache and analysis data must live in different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Inputs = input.Inputs
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.User = strings.TrimSpace(input.User)

	emojis, err := ParseBoolString(defaultString(input.Emoji, "no"))
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(defaultString(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(defaultString(input.Output, string(schema.TextOut))))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, geojson, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	cfg.Sort = schema.SortOrder(strings.ToLower(defaultString(input.Sort, string(schema.InputOrder))))
	if _, ok := schema.ValidSortOrders[cfg.Sort]; !ok {
		return fmt.Errorf("invalid sort order '%s'. must be input, hmpi", input.Sort)
	}

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processEngineOptions handles imputation, header matching and limit overrides.
func processEngineOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.Strategy = schema.ImputationStrategy(strings.ToLower(defaultString(input.Strategy, string(schema.HalfImpute))))
	if _, ok := schema.ValidImputationStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be half, zero, mean, median, none", input.Strategy)
	}

	cfg.Match = schema.MatchMode(strings.ToLower(defaultString(input.MatchMode, string(schema.SubstringMatch))))
	if _, ok := schema.ValidMatchModes[cfg.Match]; !ok {
		return fmt.Errorf("invalid match mode '%s'. must be substring, exact", input.MatchMode)
	}

	overrides, err := parseMetalMap(input.Limits, "limits", true)
	if err != nil {
		return err
	}
	cfg.Limits = schema.DefaultStandardLimits().WithOverrides(overrides)

	if len(input.DetectionLimits) > 0 {
		dl, err := parseMetalMap(input.DetectionLimits, "detection-limits", false)
		if err != nil {
			return err
		}
		cfg.DetectionLimits = dl
	}
	return nil
}

// processClusterOptions validates the clustering parameters.
func processClusterOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.Eps = input.Eps
	if cfg.Eps == 0 {
		cfg.Eps = schema.DefaultEps
	}
	if cfg.Eps < 0 {
		return fmt.Errorf("eps must be positive (received %v)", input.Eps)
	}

	cfg.MinPts = input.MinPts
	if cfg.MinPts == 0 {
		cfg.MinPts = schema.DefaultMinPts
	}
	if cfg.MinPts < 1 {
		return fmt.Errorf("min-pts must be at least 1 (received %d)", input.MinPts)
	}

	cfg.ValueColumn = strings.TrimSpace(input.ValueColumn)
	if cfg.ValueColumn == "" && input.Forecast {
		cfg.ValueColumn = DefaultValueColumn
	}
	return nil
}

// parseMetalMap resolves metal names or symbols used as config keys. Values
// must be positive, except that allowZero lets a limit of 0 unregulate a metal.
func parseMetalMap(raw map[string]float64, key string, allowZero bool) (map[schema.MetalKind]float64, error) {
	out := make(map[schema.MetalKind]float64, len(raw))
	for name, v := range raw {
		m, ok := schema.ParseMetalKind(name)
		if !ok {
			return nil, fmt.Errorf("invalid %s entry '%s': unknown metal", key, name)
		}
		if v < 0 || (v == 0 && !allowZero) {
			return nil, fmt.Errorf("invalid %s entry '%s': value must be positive (received %v)", key, name, v)
		}
		out[m] = v
	}
	return out, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// defaultString returns s, or def when s is blank.
func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// RevalidateRequest checks the options a tool request may override on a
// cloned Config. Empty enum values fall back to their defaults.
func RevalidateRequest(cfg *Config) error {
	if cfg.Strategy == "" {
		cfg.Strategy = schema.HalfImpute
	}
	if _, ok := schema.ValidImputationStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be half, zero, mean, median, none", cfg.Strategy)
	}
	if cfg.Sort == "" {
		cfg.Sort = schema.InputOrder
	}
	if _, ok := schema.ValidSortOrders[cfg.Sort]; !ok {
		return fmt.Errorf("invalid sort order '%s'. must be input, hmpi", cfg.Sort)
	}
	if cfg.ResultLimit < 0 || cfg.ResultLimit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, cfg.ResultLimit)
	}
	if cfg.Eps <= 0 {
		return fmt.Errorf("eps must be positive (received %v)", cfg.Eps)
	}
	if cfg.MinPts < 1 {
		return fmt.Errorf("min-pts must be at least 1 (received %d)", cfg.MinPts)
	}
	return nil
}
