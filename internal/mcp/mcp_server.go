// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the HMPI MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"HMPI Contamination Index Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	strategies := []string{"half", "zero", "mean", "median", "none"}

	// --- 1. Tool: compute_hmpi ---
	s.AddTool(mcp.NewTool("compute_hmpi",
		mcp.WithDescription("Compute the heavy metal pollution index and risk category of every sample in a CSV or XLSX file."),
		mcp.WithString("path", mcp.Description("Path to the CSV or XLSX file."), mcp.Required()),
		mcp.WithString("strategy", mcp.Description("Imputation strategy for missing readings. Defaults to 'half'."), mcp.Enum(strategies...)),
		mcp.WithString("sort", mcp.Description("Sample order: 'input' keeps file order, 'hmpi' ranks highest first."), mcp.Enum("input", "hmpi")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of samples returned.")),
		mcp.WithString("user", mcp.Description("Account charged for datasets over the free row allowance.")),
	), h.handleComputeHMPI)

	// --- 2. Tool: cluster_zones ---
	s.AddTool(mcp.NewTool("cluster_zones",
		mcp.WithDescription("Group samples into spatial risk zones with DBSCAN over latitude, longitude and index value."),
		mcp.WithString("path", mcp.Description("Path to the CSV or XLSX file."), mcp.Required()),
		mcp.WithNumber("eps", mcp.Description("Neighborhood radius in standardized units. Defaults to 1.2.")),
		mcp.WithNumber("min_pts", mcp.Description("Minimum points per dense region. Defaults to 2.")),
		mcp.WithString("value_column", mcp.Description("Cluster on a forecast column (e.g. 'Predicted_HMPI_Ensemble') instead of the computed index.")),
		mcp.WithString("strategy", mcp.Description("Imputation strategy when the index is computed."), mcp.Enum(strategies...)),
	), h.handleClusterZones)

	// --- 3. Tool: metal_contributions ---
	s.AddTool(mcp.NewTool("metal_contributions",
		mcp.WithDescription("Break down each sample's index into per-metal contributions and count samples per risk category."),
		mcp.WithString("path", mcp.Description("Path to the CSV or XLSX file."), mcp.Required()),
		mcp.WithString("strategy", mcp.Description("Imputation strategy for missing readings."), mcp.Enum(strategies...)),
		mcp.WithNumber("limit", mcp.Description("Limit the number of samples broken down.")),
	), h.handleMetalContributions)

	// --- 4. Tool: standard_limits ---
	s.AddTool(mcp.NewTool("standard_limits",
		mcp.WithDescription("List the standard limit and unit weight of every metal."),
	), h.handleStandardLimits)

	// --- 5. Tool: token_quote ---
	s.AddTool(mcp.NewTool("token_quote",
		mcp.WithDescription("Quote the token cost of scoring a number of rows against a user's balance."),
		mcp.WithString("user", mcp.Description("Account to quote."), mcp.Required()),
		mcp.WithNumber("rows", mcp.Description("Number of sample rows in the request."), mcp.Required()),
	), h.handleTokenQuote)

	return s
}

// StartMCPServer starts the HMPI MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
