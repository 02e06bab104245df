// Package main provides a performance benchmarking tool for the hmpi CLI.
// It generates synthetic surveys of increasing size, times the index and
// clusters commands on each, running every test several times, treating the
// first successful cached run as cold and averaging the rest as warm, and
// writes a CSV summary.
//
// Prerequisites:
// - hmpi binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic surveys are written
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Survey      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	SurveyRows  []int
	// ClusterMaxRows skips clustering on larger surveys, since DBSCAN is quadratic.
	ClusterMaxRows int
}

// metalColumns lists the generated metal headers with a typical concentration scale in mg/L.
var metalColumns = []struct {
	header string
	scale  float64
}{
	{"Hg", 0.002}, {"Pb", 0.02}, {"Cd", 0.005}, {"As", 0.02}, {"Cr", 0.08},
	{"Ni", 0.05}, {"Cu", 1.5}, {"Zn", 4}, {"Fe", 0.5}, {"Mn", 0.3},
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:        os.Args[1],
		Timeout:        5 * time.Minute,
		NoCacheRuns:    3,
		CacheRuns:      4,
		SurveyRows:     []int{500, 5000, 50000},
		ClusterMaxRows: 5000,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("hmpi", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the hmpi binary exists and the work dir is writable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("hmpi"); err != nil {
		return fmt.Errorf("hmpi binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// writeSurvey generates a survey of n samples scattered around one region.
func writeSurvey(path string, n int, rng *rand.Rand) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	header := []string{"Sample_ID", "Location", "Latitude", "Longitude"}
	for _, m := range metalColumns {
		header = append(header, m.header)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range n {
		rec := []string{
			"S" + strconv.Itoa(i+1),
			"Block " + strconv.Itoa(i%40),
			strconv.FormatFloat(22+rng.Float64()*2, 'f', 5, 64),
			strconv.FormatFloat(88+rng.Float64()*2, 'f', 5, 64),
		}
		for _, m := range metalColumns {
			// Leave about 5% of readings empty so imputation runs.
			if rng.IntN(20) == 0 {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(m.scale*rng.ExpFloat64(), 'f', 6, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// runBenchmarks executes all benchmark tests across the generated surveys.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult
	rng := rand.New(rand.NewPCG(42, 7))

	fmt.Printf("Starting benchmark: %d surveys, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.SurveyRows), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, rows := range config.SurveyRows {
		name := fmt.Sprintf("survey_%d.csv", rows)
		path := filepath.Join(config.WorkDir, name)
		if err := writeSurvey(path, rows, rng); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", name, err)
		}
		fmt.Printf("Benchmarking %s\n", name)

		results = append(results, runBenchmarkSuite(config, name, path, "index", "index computation"))
		if rows <= config.ClusterMaxRows {
			results = append(results, runBenchmarkSuite(config, name, path, "clusters", "risk zone clustering"))
		}
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, survey, path, command, description string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, survey)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, command, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Survey:      survey,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes an hmpi command multiple times with the given cache backend and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, path, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, path, "--cache-backend", cacheBackend}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("hmpi", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "clusters" {
		return strings.Contains(outputStr, "Clustering completed in")
	}
	return strings.Contains(outputStr, "Scored") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("hmpi_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"survey", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Survey, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "index", "Index Computation:")
	printCommandSummary(results, "clusters", "Risk Zone Clustering:")
}

// printCommandSummary displays results for a specific command type.
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-18s: No-cache: %s, Cold: %s, Warm: %s\n", result.Survey, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
