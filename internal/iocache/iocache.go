// Package iocache is for caching analysis results and persisting repository history.
package iocache

import (
	"errors"
	"sync"

	"github.com/huangsam/reposcore/internal/contract"
)

// ErrNotFound is returned by persisted tiers when a key has no entry.
var ErrNotFound = errors.New("cache entry not found")

// ErrCorruptEntry is returned by persisted tiers when an entry exists but cannot be read back.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// CacheStoreManager manages the configured cache and history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetCacheStore returns the persisted cache tier, or nil when none is configured.
func (mgr *CacheStoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetHistoryStore returns the history store, or nil when none is configured.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
