package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldRefresh(ctx))
	assert.False(t, shouldSkipHistory(ctx))
}

func TestContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), refreshKey, "yes")
	assert.False(t, shouldRefresh(ctx))
}

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithoutHistory(WithRefresh(context.Background()))

	const numGoroutines = 50
	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Go(func() {
			assert.True(t, shouldRefresh(ctx))
			assert.True(t, shouldSkipHistory(ctx))
		})
	}
	wg.Wait()
}
