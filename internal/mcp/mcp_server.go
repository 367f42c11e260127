// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"github.com/huangsam/reposcore/core"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// serverVersion is reported to MCP clients during initialization.
const serverVersion = "1.0.0"

// NewMCPServer initializes and configures the repository quality MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(analyzer *core.Analyzer) *server.MCPServer {
	s := server.NewMCPServer(
		"Repository Quality Server",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	h := &toolHandler{analyzer: analyzer}

	// --- 1. Tool: analyze_repository ---
	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Analyze a GitHub repository and return its quality score, grade, per-dimension breakdown and recommendations."),
		mcp.WithString("repository", mcp.Description("Repository reference such as owner/name or https://github.com/owner/name."), mcp.Required()),
		mcp.WithBoolean("refresh", mcp.Description("Skip the cache and analyze again.")),
	), h.handleAnalyzeRepository)

	// --- 2. Tool: analyze_repositories ---
	s.AddTool(mcp.NewTool("analyze_repositories",
		mcp.WithDescription("Analyze several GitHub repositories with bounded concurrency. Failures are reported per repository."),
		mcp.WithArray("repositories", mcp.Description("Repository references to analyze."), mcp.Required(), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithBoolean("refresh", mcp.Description("Skip the cache and analyze again.")),
	), h.handleAnalyzeRepositories)

	// --- 3. Tool: get_trends ---
	s.AddTool(mcp.NewTool("get_trends",
		mcp.WithDescription("Compare the two most recent recorded analyses of a repository."),
		mcp.WithString("repository", mcp.Description("Repository reference such as owner/name."), mcp.Required()),
	), h.handleGetTrends)

	// --- 4. Tool: get_statistics ---
	s.AddTool(mcp.NewTool("get_statistics",
		mcp.WithDescription("Summarize the recorded overall scores of a repository."),
		mcp.WithString("repository", mcp.Description("Repository reference such as owner/name."), mcp.Required()),
	), h.handleGetStatistics)

	return s
}

// StartMCPServer serves the MCP server over stdio until the client disconnects.
func StartMCPServer(analyzer *core.Analyzer) error {
	return server.ServeStdio(NewMCPServer(analyzer))
}
