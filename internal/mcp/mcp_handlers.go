package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/hmpi/core"
	"github.com/huangsam/hmpi/core/algo"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/ledger"
	"github.com/huangsam/hmpi/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// datasetResult is the compute_hmpi response for one file.
type datasetResult struct {
	DatasetID string                    `json:"dataset_id"`
	Source    string                    `json:"source"`
	Strategy  schema.ImputationStrategy `json:"strategy"`
	Metals    []schema.MetalKind        `json:"metals"`
	Converted []schema.MetalKind        `json:"unit_converted,omitempty"`
	Summary   schema.RiskDistribution   `json:"summary"`
	Samples   []schema.SampleOutput     `json:"samples"`
}

// contributionResult is the metal_contributions response for one file.
type contributionResult struct {
	Source       string                         `json:"source"`
	Distribution schema.RiskDistribution        `json:"distribution"`
	Samples      []schema.ContributionBreakdown `json:"samples"`
}

// limitResult is one row of the standard_limits response.
type limitResult struct {
	Metal  schema.MetalKind `json:"metal"`
	Symbol string           `json:"symbol"`
	Limit  float64          `json:"limit_mg_l"`
	Weight *float64         `json:"wi"`
}

// requestConfig clones the base config and applies the options shared by the
// dataset tools.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if s := request.GetString("sort", ""); s != "" {
		cfg.Sort = schema.SortOrder(s)
	}
	cfg.ResultLimit = request.GetInt("limit", cfg.ResultLimit)
	if u := request.GetString("user", ""); u != "" {
		cfg.User = u
	}
	return h.withDataset(cfg, request)
}

func (h *toolHandler) handleComputeHMPI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	results, _, err := core.GetIndexResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("index computation failed: %v", err)), nil
	}

	out := make([]datasetResult, 0, len(results))
	for _, res := range results {
		out = append(out, datasetResult{
			DatasetID: res.DatasetID,
			Source:    res.Source,
			Strategy:  res.Strategy,
			Metals:    res.Metals,
			Converted: res.Converted,
			Summary:   algo.Distribution(res.Samples),
			Samples:   schema.NewSampleOutputs(res),
		})
	}
	return jsonResult(out)
}

func (h *toolHandler) handleClusterZones(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Eps = request.GetFloat("eps", cfg.Eps)
	cfg.MinPts = request.GetInt("min_pts", cfg.MinPts)
	cfg.ValueColumn = request.GetString("value_column", cfg.ValueColumn)

	cfg, err := h.withDataset(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, _, err := core.GetClusterResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clustering failed: %v", err)), nil
	}
	return jsonResult(schema.NewClusterOutput(result))
}

func (h *toolHandler) handleMetalContributions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	reports, err := core.GetContributions(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("contribution analysis failed: %v", err)), nil
	}

	out := make([]contributionResult, 0, len(reports))
	for _, rep := range reports {
		out = append(out, contributionResult{
			Source:       rep.Result.Source,
			Distribution: rep.Distribution,
			Samples:      rep.Breakdowns,
		})
	}
	return jsonResult(out)
}

func (h *toolHandler) handleStandardLimits(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limits, weights, err := core.GetLimits(h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute weights: %v", err)), nil
	}

	out := make([]limitResult, 0, len(schema.AllMetals))
	for _, m := range schema.AllMetals {
		row := limitResult{Metal: m, Symbol: m.Symbol(), Limit: limits[m]}
		if w, ok := weights[m]; ok {
			rounded := schema.Round4(w)
			row.Weight = &rounded
		}
		out = append(out, row)
	}
	return jsonResult(out)
}

func (h *toolHandler) handleTokenQuote(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user", "")
	rows := request.GetInt("rows", -1)
	if rows < 0 {
		return mcp.NewToolResultError("invalid parameters: rows must be zero or more"), nil
	}

	q, err := ledger.QuoteFor(core.LedgerFor(h.baseCfg, h.mgr), user, rows)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("quote failed: %v", err)), nil
	}
	return jsonResult(q)
}

// withDataset applies the shared dataset options on top of an already cloned config.
func (h *toolHandler) withDataset(cfg *contract.Config, request mcp.CallToolRequest) (*contract.Config, error) {
	path := request.GetString("path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	cfg.Inputs = []string{path}
	if s := request.GetString("strategy", ""); s != "" {
		cfg.Strategy = schema.ImputationStrategy(s)
	}
	if err := contract.RevalidateRequest(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// jsonResult wraps v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
