package iocache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// ErrHistoryStoreDisabled is returned by history commands when no store is configured.
var ErrHistoryStoreDisabled = errors.New("history store is not configured")

// InitStores initializes the global manager from the validated configuration.
// A store that cannot be opened is left nil and logged as a warning: the cache
// then runs in memory only and history is kept for the current process.
func InitStores(cfg *contract.Config) {
	initOnce.Do(func() {
		var cacheStore contract.CacheStore
		if cfg.CacheEnabled {
			store, err := NewCacheStore(cfg.CacheBackend, cfg.CacheDBConnect, cfg.CacheDir)
			if err != nil {
				contract.LogWarn("Cache persistence unavailable, continuing in memory only",
					fmt.Errorf("%w: %w", contract.ErrCachePersistenceUnavailable, err))
			} else {
				cacheStore = store
			}
		}

		var historyStore contract.HistoryStore
		store, err := NewHistoryStore(cfg.HistoryBackend, cfg.HistoryDBConnect, cfg.HistoryDir)
		if err != nil {
			contract.LogWarn("History persistence unavailable, continuing in memory only",
				fmt.Errorf("%w: %w", contract.ErrHistoryPersistenceUnavailable, err))
		} else {
			historyStore = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.cache = cacheStore
		Manager.history = historyStore
	})
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearCache clears the persisted cache tier and recreates its root.
// Without a persisted tier there is nothing to clear.
func ClearCache() error {
	store := Manager.GetCacheStore()
	if store == nil {
		return nil
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// ClearHistory removes every stored history.
func ClearHistory() error {
	store := Manager.GetHistoryStore()
	if store == nil {
		return ErrHistoryStoreDisabled
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// GetCacheStatus reports the persisted cache tier, or a disconnected status when none is configured.
func GetCacheStatus(backend schema.DatabaseBackend) (schema.CacheStatus, error) {
	store := Manager.GetCacheStore()
	if store == nil {
		return schema.CacheStatus{Backend: string(backend)}, nil
	}
	return store.GetStatus()
}

// GetHistoryStatus reports the history store, or a disconnected status when none is configured.
func GetHistoryStatus(backend schema.DatabaseBackend) (schema.HistoryStatus, error) {
	store := Manager.GetHistoryStore()
	if store == nil {
		return schema.HistoryStatus{Backend: string(backend)}, nil
	}
	return store.GetStatus()
}
