package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisFailed(t *testing.T) {
	cause := errors.Join(ErrMetadataFetchFailed, errors.New("404 Not Found"))
	err := AnalysisFailed("owner/missing", cause)

	assert.ErrorIs(t, err, ErrMetadataFetchFailed)
	assert.Contains(t, err.Error(), "owner/missing")
	assert.Contains(t, err.Error(), "404 Not Found")

	var analysisErr *AnalysisError
	assert.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, "owner/missing", analysisErr.Repository)
}

func TestConfigError(t *testing.T) {
	err := configError("bad value %d", 7)
	assert.ErrorIs(t, err, ErrConfigInvalid)
	assert.Equal(t, "invalid configuration: bad value 7", err.Error())
}
