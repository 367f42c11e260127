package contract

import (
	"errors"
	"fmt"
)

// Error taxonomy of the analysis pipeline.
var (
	ErrInvalidReference              = errors.New("invalid repository reference")
	ErrMetadataFetchFailed           = errors.New("repository metadata fetch failed")
	ErrProbeFailed                   = errors.New("metric probe failed")
	ErrCachePersistenceUnavailable   = errors.New("cache persistence unavailable")
	ErrHistoryPersistenceUnavailable = errors.New("history persistence unavailable")
	ErrConfigInvalid                 = errors.New("invalid configuration")
	ErrInsufficientHistory           = errors.New("insufficient history")
)

// AnalysisError reports a failed single-repository analysis.
type AnalysisError struct {
	Repository string
	Err        error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v", e.Repository, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// AnalysisFailed wraps a cause with the repository reference it belongs to.
func AnalysisFailed(repository string, cause error) error {
	return &AnalysisError{Repository: repository, Err: cause}
}

// configError builds an error matching ErrConfigInvalid.
func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, fmt.Sprintf(format, args...))
}
