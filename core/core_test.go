package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/iocache"
	"github.com/huangsam/hmpi/internal/ledger"
	"github.com/huangsam/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const wellsCSV = `Sample_ID,Location,Latitude,Longitude,Pb,Cd
W1,Village A,22.5,88.3,0.02,0.006
W2,Village B,22.6,88.4,0.002,0.0006
W3,,,,,
`

// writeFixture writes content to name inside a temporary directory.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// bigFixture writes a table of n identical safe samples.
func bigFixture(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Sample_ID,Pb,Cd\n")
	for i := range n {
		fmt.Fprintf(&b, "B%d,0.002,0.0006\n", i+1)
	}
	return writeFixture(t, "big.csv", b.String())
}

// noStores returns a mock manager without result cache or analysis tracking.
func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(nil)
	return mgr
}

func baseConfig(inputs ...string) *contract.Config {
	return &contract.Config{
		Inputs:    inputs,
		Strategy:  schema.NoImpute,
		Match:     schema.SubstringMatch,
		Limits:    schema.DefaultStandardLimits(),
		Eps:       schema.DefaultEps,
		MinPts:    schema.DefaultMinPts,
		Sort:      schema.InputOrder,
		Workers:   2,
		Precision: 4,
		Output:    schema.JSONOut,
	}
}

func TestGetIndexResults(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	path := writeFixture(t, "wells.csv", wellsCSV)

	t.Run("input order", func(t *testing.T) {
		mgr := noStores()
		results, _, err := GetIndexResults(ctx, baseConfig(path), mgr)
		require.NoError(t, err)
		require.Len(t, results, 1)

		res := results[0]
		assert.Equal(t, path, res.Source)
		assert.Equal(t, []schema.MetalKind{schema.Lead, schema.Cadmium}, res.Metals)
		require.Len(t, res.Samples, 3)
		assert.InDelta(t, 200, res.Samples[0].HMPI, 1e-4)
		assert.Equal(t, schema.HighRisk, res.Samples[0].Category)
		assert.InDelta(t, 20, res.Samples[1].HMPI, 1e-4)
		assert.False(t, res.Samples[2].Defined)
		mgr.AssertExpectations(t)
	})

	t.Run("ranked and limited", func(t *testing.T) {
		cfg := baseConfig(path)
		cfg.Sort = schema.HMPIOrder
		cfg.ResultLimit = 2
		results, _, err := GetIndexResults(ctx, cfg, noStores())
		require.NoError(t, err)
		require.Len(t, results[0].Samples, 2)
		assert.Equal(t, "W1", results[0].Samples[0].Sample.ID)
		assert.Equal(t, "W2", results[0].Samples[1].Sample.ID)
	})

	t.Run("several inputs keep their order", func(t *testing.T) {
		other := writeFixture(t, "other.csv", "Sample_ID,Pb\nX1,0.005\n")
		results, _, err := GetIndexResults(ctx, baseConfig(other, path), noStores())
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, other, results[0].Source)
		assert.Equal(t, path, results[1].Source)
	})

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.csv")
		_, _, err := GetIndexResults(ctx, baseConfig(missing), noStores())
		require.Error(t, err)
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("no metal columns", func(t *testing.T) {
		bad := writeFixture(t, "bad.csv", "Sample_ID,pH\nX1,7.1\n")
		_, _, err := GetIndexResults(ctx, baseConfig(bad), noStores())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no heavy metal concentration data found")
	})

	t.Run("no inputs", func(t *testing.T) {
		_, _, err := GetIndexResults(ctx, baseConfig(), noStores())
		assert.ErrorIs(t, err, ErrNoInputs)
	})
}

func TestOrderSamplesLeavesInputUntouched(t *testing.T) {
	samples := []schema.SampleResult{
		{Sample: schema.Sample{ID: "a"}, HMPI: 10, Defined: true},
		{Sample: schema.Sample{ID: "b"}, HMPI: 90, Defined: true},
	}
	cfg := &contract.Config{Sort: schema.HMPIOrder}
	ordered := orderSamples(samples, cfg)
	assert.Equal(t, "b", ordered[0].Sample.ID)
	assert.Equal(t, "a", samples[0].Sample.ID)
}

func TestTokenChargeBeforeCompute(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	path := bigFixture(t, 60)

	cfg := baseConfig(path)
	cfg.User = "charge-test-user"

	_, _, err := GetIndexResults(ctx, cfg, noStores())
	require.ErrorIs(t, err, ledger.ErrInsufficientTokens)
	assert.Contains(t, err.Error(), "60 rows need 5 tokens")

	_, err = memoryLedger.Credit(cfg.User, 8)
	require.NoError(t, err)

	results, _, err := GetIndexResults(ctx, cfg, noStores())
	require.NoError(t, err)
	assert.Len(t, results[0].Samples, 60)

	balance, err := memoryLedger.Balance(cfg.User)
	require.NoError(t, err)
	assert.Equal(t, 3, balance)
}

func TestFreeRequestSkipsLedger(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	cfg := baseConfig(writeFixture(t, "wells.csv", wellsCSV))
	cfg.User = "free-test-user"

	_, _, err := GetIndexResults(ctx, cfg, noStores())
	require.NoError(t, err)

	balance, err := memoryLedger.Balance(cfg.User)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestAnalysisTracking(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	path := writeFixture(t, "wells.csv", wellsCSV)

	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
		return p["source"] == path && p["strategy"] == schema.NoImpute
	})).Return(int64(7), nil)
	store.On("RecordSampleResult", int64(7), mock.Anything).Return(nil)
	store.On("EndAnalysis", int64(7), mock.Anything, 3).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	_, _, err := GetIndexResults(ctx, baseConfig(path), mgr)
	require.NoError(t, err)
	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "RecordSampleResult", 3)
}

func TestAnalysisTrackingFailureIsNotFatal(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	store := &iocache.MockAnalysisStore{}
	store.On("BeginAnalysis", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(store)

	results, _, err := GetIndexResults(ctx, baseConfig(writeFixture(t, "wells.csv", wellsCSV)), mgr)
	require.NoError(t, err)
	assert.Len(t, results[0].Samples, 3)
	store.AssertNotCalled(t, "RecordSampleResult", mock.Anything, mock.Anything)
}

func TestGetClusterResults(t *testing.T) {
	ctx := withSuppressHeader(context.Background())

	t.Run("forecast column", func(t *testing.T) {
		path := writeFixture(t, "forecast.csv", `Sample_ID,Latitude,Longitude,Predicted_HMPI_Ensemble
A1,0,0,100
A2,0.01,0.01,101
B1,10,10,20
B2,10.01,10.01,21
A1,0,0,100
C1,,,55
`)
		cfg := baseConfig(path)
		cfg.ValueColumn = "Predicted_HMPI_Ensemble"
		cfg.Eps = 0.5
		cfg.MinPts = 2

		res, _, err := GetClusterResults(ctx, cfg, nil)
		require.NoError(t, err)
		require.Len(t, res.Zones, 2)
		assert.InDelta(t, 100.5, res.Zones[0].AvgValue, 1e-9)
		assert.Equal(t, schema.HighRisk, res.Zones[0].Category)
		assert.InDelta(t, 20.5, res.Zones[1].AvgValue, 1e-9)
		assert.Equal(t, schema.SafeRisk, res.Zones[1].Category)
		assert.Equal(t, 0, res.Noise)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("ranked zones", func(t *testing.T) {
		path := writeFixture(t, "forecast.csv", `Sample_ID,Latitude,Longitude,Predicted_HMPI_Ensemble
B1,10,10,20
B2,10.01,10.01,21
A1,0,0,100
A2,0.01,0.01,101
`)
		cfg := baseConfig(path)
		cfg.ValueColumn = "Predicted_HMPI_Ensemble"
		cfg.Eps = 0.5
		cfg.MinPts = 2
		cfg.Sort = schema.HMPIOrder

		res, _, err := GetClusterResults(ctx, cfg, nil)
		require.NoError(t, err)
		require.Len(t, res.Zones, 2)
		assert.InDelta(t, 100.5, res.Zones[0].AvgValue, 1e-9)
	})

	t.Run("unknown value column", func(t *testing.T) {
		cfg := baseConfig(writeFixture(t, "wells.csv", wellsCSV))
		cfg.ValueColumn = "Forecast"
		_, _, err := GetClusterResults(ctx, cfg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `value column "Forecast" not found`)
	})

	t.Run("computed index with too few points", func(t *testing.T) {
		cfg := baseConfig(writeFixture(t, "wells.csv", wellsCSV))
		cfg.MinPts = 3
		res, _, err := GetClusterResults(ctx, cfg, noStores())
		require.NoError(t, err)
		assert.Empty(t, res.Zones)
		assert.Equal(t, 2, res.Noise)
		assert.Equal(t, 1, res.Skipped)
	})
}

func TestGetContributions(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	cfg := baseConfig(writeFixture(t, "wells.csv", wellsCSV))
	cfg.Sort = schema.HMPIOrder
	cfg.ResultLimit = 1

	reports, err := GetContributions(ctx, cfg, noStores())
	require.NoError(t, err)
	require.Len(t, reports, 1)

	rep := reports[0]
	assert.Equal(t, schema.RiskDistribution{Safe: 1, High: 1, Undefined: 1}, rep.Distribution)
	require.Len(t, rep.Breakdowns, 1)
	assert.Equal(t, "W1", rep.Breakdowns[0].SampleID)
	assert.InDelta(t, 200, rep.Breakdowns[0].HMPI, 1e-4)
}

func TestGetLimits(t *testing.T) {
	limits, weights, err := GetLimits(&contract.Config{})
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultStandardLimits(), limits)

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1, sum, 1e-9)
	assert.Greater(t, weights[schema.Cadmium], weights[schema.Lead])
}

func TestExecutorsWriteFiles(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	dir := t.TempDir()
	path := writeFixture(t, "wells.csv", wellsCSV)

	tests := []struct {
		name string
		exec ExecutorFunc
		mode schema.OutputMode
	}{
		{"index", ExecuteIndex, schema.JSONOut},
		{"clusters", ExecuteClusters, schema.CSVOut},
		{"contrib", ExecuteContrib, schema.CSVOut},
		{"limits", ExecuteLimits, schema.TextOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(path)
			cfg.Output = tt.mode
			cfg.OutputFile = filepath.Join(dir, tt.name+".out")
			require.NoError(t, tt.exec(ctx, cfg, noStores()))

			content, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			assert.NotEmpty(t, content)
		})
	}
}
