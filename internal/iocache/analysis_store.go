package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable  = "hmpi_analysis_runs"
	sampleResultsTable = "hmpi_sample_results"
)

// analysisTables lists the analysis tables in creation order.
var analysisTables = []string{analysisRunsTable, sampleResultsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		analysisRunsTable:  getCreateAnalysisRunsQuery(backend),
		sampleResultsTable: getCreateSampleResultsQuery(backend),
	}
	for _, table := range analysisTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for hmpi_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_samples INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_samples INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_samples INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateSampleResultsQuery returns the CREATE TABLE query for hmpi_sample_results.
func getCreateSampleResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(sampleResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				sample_id VARCHAR(255) NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				latitude DOUBLE,
				longitude DOUBLE,
				metal_count INT NOT NULL,
				hmpi DOUBLE,
				risk_category VARCHAR(20) NOT NULL,
				PRIMARY KEY (analysis_id, sample_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				sample_id TEXT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				latitude DOUBLE PRECISION,
				longitude DOUBLE PRECISION,
				metal_count INT NOT NULL,
				hmpi DOUBLE PRECISION,
				risk_category TEXT NOT NULL,
				PRIMARY KEY (analysis_id, sample_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				sample_id TEXT NOT NULL,
				analysis_time TEXT NOT NULL,
				latitude REAL,
				longitude REAL,
				metal_count INTEGER NOT NULL,
				hmpi REAL,
				risk_category TEXT NOT NULL,
				PRIMARY KEY (analysis_id, sample_id)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, startTime, string(configJSON)).Scan(&analysisID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		if result, err = as.db.Exec(query, formatTime(startTime, as.backend), string(configJSON)); err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis records the end time, duration and sample count of a run.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalSamples int) error {
	if as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var startTime dbTime
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholder(as.backend, 1))
	if err := as.db.QueryRow(query, analysisID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_samples = %s WHERE analysis_id = %s`,
		quotedTableName,
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3), placeholder(as.backend, 4))
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalSamples, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordSampleResult stores the scored result of one sample.
func (as *AnalysisStoreImpl) RecordSampleResult(analysisID int64, record schema.SampleRecord) error {
	if as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, sample_id, analysis_time, latitude, longitude, metal_count, hmpi, risk_category)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s)
	`, quoteTableName(sampleResultsTable, as.backend),
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3), placeholder(as.backend, 4),
		placeholder(as.backend, 5), placeholder(as.backend, 6), placeholder(as.backend, 7), placeholder(as.backend, 8))

	_, err := as.db.Exec(query,
		analysisID, record.SampleID, formatTime(record.AnalysisTime, as.backend),
		record.Latitude, record.Longitude, record.MetalCount, record.HMPI, record.RiskCategory)
	if err != nil {
		return fmt.Errorf("failed to insert result for sample %s: %w", record.SampleID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)

	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest dbTime
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_samples), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalSamplesScored); err != nil {
			return status, fmt.Errorf("failed to get total samples scored: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, start_time, end_time, run_duration_ms, COALESCE(total_samples, 0), config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var (
			record         schema.AnalysisRunRecord
			start, end     dbTime
			durationMs     sql.NullInt32
			configParamsJS sql.NullString
		)
		if err := rows.Scan(&record.AnalysisID, &start, &end, &durationMs, &record.TotalSamples, &configParamsJS); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		record.StartTime = start.Time
		if end.Valid {
			t := end.Time
			record.EndTime = &t
		}
		if durationMs.Valid {
			d := durationMs.Int32
			record.RunDurationMs = &d
		}
		if configParamsJS.Valid {
			s := configParamsJS.String
			record.ConfigParams = &s
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllSampleResults retrieves all per-sample results from the store.
func (as *AnalysisStoreImpl) GetAllSampleResults() ([]schema.SampleResultRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, sample_id, analysis_time, latitude, longitude, metal_count, hmpi, risk_category
		FROM %s ORDER BY analysis_id, sample_id`, quoteTableName(sampleResultsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SampleResultRecord
	for rows.Next() {
		var (
			record        schema.SampleResultRecord
			at            dbTime
			lat, lon, idx sql.NullFloat64
		)
		if err := rows.Scan(&record.AnalysisID, &record.SampleID, &at, &lat, &lon,
			&record.MetalCount, &idx, &record.RiskCategory); err != nil {
			return nil, fmt.Errorf("failed to scan sample result: %w", err)
		}
		record.AnalysisTime = at.Time
		record.Latitude = nullFloatPtr(lat)
		record.Longitude = nullFloatPtr(lon)
		record.HMPI = nullFloatPtr(idx)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sample results: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// mysqlTimeLayout is the DATETIME text form returned when parseTime is off.
const mysqlTimeLayout = "2006-01-02 15:04:05.999999"

// dbTime scans a timestamp stored natively or as text. Valid is false for NULL.
type dbTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, mysqlTimeLayout} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("failed to parse timestamp %q", s)
}
