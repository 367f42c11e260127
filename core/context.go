package core

import "context"

// Context keys for analysis options
type contextKey string

const (
	refreshKey     contextKey = "refresh"
	skipHistoryKey contextKey = "skipHistory"
)

// WithRefresh makes AnalyzeOne bypass cache lookups. Fresh results are still cached.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey, true)
}

// shouldRefresh returns whether cache lookups should be skipped
func shouldRefresh(ctx context.Context) bool {
	val := ctx.Value(refreshKey)
	if val == nil {
		return false // default: consult the cache
	}
	refresh, ok := val.(bool)
	return ok && refresh
}

// WithoutHistory makes AnalyzeOne skip recording a history snapshot.
func WithoutHistory(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipHistoryKey, true)
}

// shouldSkipHistory returns whether history recording should be skipped
func shouldSkipHistory(ctx context.Context) bool {
	val := ctx.Value(skipHistoryKey)
	if val == nil {
		return false // default: record history
	}
	skip, ok := val.(bool)
	return ok && skip
}
