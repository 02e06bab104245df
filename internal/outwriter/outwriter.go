// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/ledger"
	"github.com/huangsam/hmpi/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteIndex prints scored datasets using the configured output format.
func (ow *OutWriter) WriteIndex(results []schema.IndexResult, cfg *contract.Config, duration time.Duration) error {
	return WriteIndexResults(results, cfg, duration)
}

// WriteClusters prints risk zones using the configured output format.
func (ow *OutWriter) WriteClusters(result schema.ClusterResult, cfg *contract.Config, duration time.Duration) error {
	return WriteClusterResults(result, cfg, duration)
}

// WriteContributions prints chart data using the configured output format.
func (ow *OutWriter) WriteContributions(reports []ContributionReport, cfg *contract.Config) error {
	return WriteContributions(reports, cfg)
}

// WriteLimits prints the standard limits table using the configured output format.
func (ow *OutWriter) WriteLimits(limits schema.StandardLimits, weights map[schema.MetalKind]float64, cfg *contract.Config) error {
	return WriteLimits(limits, weights, cfg)
}

// WriteQuote prints a token quote using the configured output format.
func (ow *OutWriter) WriteQuote(q ledger.Quote, cfg *contract.Config) error {
	return WriteQuote(q, cfg)
}
