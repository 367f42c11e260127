package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/reposcore/core"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	analyzer *core.Analyzer
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func withRefresh(ctx context.Context, request mcp.CallToolRequest) context.Context {
	if request.GetBool("refresh", false) {
		return core.WithRefresh(ctx)
	}
	return ctx
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := strings.TrimSpace(request.GetString("repository", ""))
	if ref == "" {
		return mcp.NewToolResultError("repository is required"), nil
	}

	result, err := h.analyzer.AnalyzeOne(withRefresh(ctx, request), ref)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleAnalyzeRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs, err := stringList(request.GetArguments()["repositories"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultError("repositories must contain at least one reference"), nil
	}

	batch := h.analyzer.AnalyzeMany(withRefresh(ctx, request), refs)
	return jsonResult(batch)
}

func (h *toolHandler) handleGetTrends(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, errResult := h.historyFor(request)
	if errResult != nil {
		return errResult, nil
	}
	repo, _ := contract.ParseRepositoryReference(request.GetString("repository", ""))

	report, err := history.GetTrends(repo.Owner, repo.Name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trends unavailable: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleGetStatistics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, errResult := h.historyFor(request)
	if errResult != nil {
		return errResult, nil
	}
	repo, _ := contract.ParseRepositoryReference(request.GetString("repository", ""))

	stats, err := history.GetStatistics(repo.Owner, repo.Name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("statistics unavailable: %v", err)), nil
	}
	return jsonResult(stats)
}

// historyFor validates the repository argument and returns the history tracker.
func (h *toolHandler) historyFor(request mcp.CallToolRequest) (*core.HistoryTracker, *mcp.CallToolResult) {
	if _, err := contract.ParseRepositoryReference(request.GetString("repository", "")); err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err))
	}
	history := h.analyzer.History()
	if history == nil {
		return nil, mcp.NewToolResultError("history tracking is disabled")
	}
	return history, nil
}

// stringList accepts a JSON array of strings or a comma-separated string.
func stringList(raw any) ([]string, error) {
	var refs []string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				refs = append(refs, part)
			}
		}
	case []string:
		refs = v
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("repositories[%d] must be a string", i)
			}
			refs = append(refs, s)
		}
	default:
		return nil, fmt.Errorf("repositories must be an array of strings")
	}
	return refs, nil
}
