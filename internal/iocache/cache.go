package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// CacheEntry is one cached value with its write time and TTL in Unix milliseconds.
type CacheEntry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
	TTL       int64 `json:"ttl"`
}

// Expired reports whether the entry is stale at the given time in milliseconds.
func (e CacheEntry[T]) Expired(nowMs int64) bool {
	return nowMs-e.Timestamp >= e.TTL
}

// Cache is a two-tier key-value cache: an in-memory map backed by an optional
// persisted CacheStore. Entries found only in the persisted tier are promoted
// into memory on read. Expired entries are evicted from both tiers on access.
// Both tiers hold the JSON encoding of a value, so every Get decodes a fresh
// copy and no caller shares slices or maps with the cache or with another caller.
type Cache[T any] struct {
	mu         sync.RWMutex
	memory     map[string]CacheEntry[[]byte]
	store      contract.CacheStore
	defaultTTL time.Duration
	degraded   atomic.Bool
	now        func() time.Time
}

var _ contract.ResultCache = &Cache[schema.AnalysisResult]{} // Compile-time check

// NewCache returns a cache over the given persisted tier. A nil store yields
// a memory-only cache.
func NewCache[T any](store contract.CacheStore) *Cache[T] {
	return &Cache[T]{
		memory:     make(map[string]CacheEntry[[]byte]),
		store:      store,
		defaultTTL: contract.DefaultCacheTTL,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for stamping and expiry.
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached value for key if an unexpired entry exists in either tier.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	nowMs := c.now().UnixMilli()

	c.mu.RLock()
	entry, inMemory := c.memory[key]
	c.mu.RUnlock()
	if inMemory && !entry.Expired(nowMs) {
		if value, ok := c.decode(key, entry.Data); ok {
			return value, true
		}
	}

	persisted, onDisk := c.loadPersisted(key)
	if onDisk && !persisted.Expired(nowMs) {
		if value, ok := c.decode(key, persisted.Data); ok {
			c.mu.Lock()
			c.memory[key] = persisted
			c.mu.Unlock()
			return value, true
		}
	}

	if inMemory || onDisk {
		contract.LogDebug("Evicting expired cache entry", "key", key)
		c.evict(key)
	}
	return zero, false
}

// Set stores value under key in memory and, when configured, in the persisted tier.
// A non-positive ttl falls back to the default TTL.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Cannot encode cache entry %s", key), err)
		return
	}
	entry := CacheEntry[[]byte]{
		Data:      data,
		Timestamp: c.now().UnixMilli(),
		TTL:       ttl.Milliseconds(),
	}

	c.mu.Lock()
	c.memory[key] = entry
	c.mu.Unlock()

	if !c.persistent() {
		return
	}
	if err := c.store.Set(key, data, entry.Timestamp, entry.TTL); err != nil {
		c.degrade(err)
	}
}

// Delete removes key from both tiers.
func (c *Cache[T]) Delete(key string) {
	c.evict(key)
}

// Clear empties both tiers. A successful clear of the persisted tier also
// restores it after an earlier degradation.
func (c *Cache[T]) Clear() error {
	c.mu.Lock()
	c.memory = make(map[string]CacheEntry[[]byte])
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Clear(); err != nil {
		c.degrade(err)
		return fmt.Errorf("%w: %w", contract.ErrCachePersistenceUnavailable, err)
	}
	c.degraded.Store(false)
	return nil
}

// GetStats returns item counts for both tiers and the persisted byte size.
func (c *Cache[T]) GetStats() schema.CacheStatus {
	c.mu.RLock()
	memoryEntries := len(c.memory)
	c.mu.RUnlock()

	if c.store == nil {
		return schema.CacheStatus{Backend: "memory", Connected: true, MemoryEntries: memoryEntries}
	}

	status, err := c.store.GetStatus()
	status.MemoryEntries = memoryEntries
	if err != nil {
		status.PersistenceError = err.Error()
	} else if c.degraded.Load() {
		status.PersistenceError = contract.ErrCachePersistenceUnavailable.Error()
	}
	return status
}

// Degraded reports whether the cache has fallen back to memory only.
func (c *Cache[T]) Degraded() bool {
	return c.degraded.Load()
}

func (c *Cache[T]) persistent() bool {
	return c.store != nil && !c.degraded.Load()
}

// loadPersisted reads the encoded entry for key from the persisted tier. A corrupt
// entry is reported as present and already expired so the caller evicts it.
func (c *Cache[T]) loadPersisted(key string) (CacheEntry[[]byte], bool) {
	var entry CacheEntry[[]byte]
	if !c.persistent() {
		return entry, false
	}

	data, ts, ttl, err := c.store.Get(key)
	switch {
	case errors.Is(err, ErrCorruptEntry):
		contract.LogDebug("Discarding corrupt cache entry", "key", key, "error", err)
		return entry, true
	case errors.Is(err, ErrNotFound):
		return entry, false
	case err != nil:
		c.degrade(err)
		return entry, false
	}

	entry.Data, entry.Timestamp, entry.TTL = data, ts, ttl
	return entry, true
}

// decode returns a fresh copy of an encoded value.
func (c *Cache[T]) decode(key string, data []byte) (T, bool) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		contract.LogDebug("Discarding undecodable cache entry", "key", key, "error", err)
		return value, false
	}
	return value, true
}

func (c *Cache[T]) evict(key string) {
	c.mu.Lock()
	delete(c.memory, key)
	c.mu.Unlock()

	if !c.persistent() {
		return
	}
	if err := c.store.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
		c.degrade(err)
	}
}

// degrade switches the cache to memory only, warning on the first failure.
func (c *Cache[T]) degrade(err error) {
	if c.degraded.CompareAndSwap(false, true) {
		contract.LogWarn("Cache persistence unavailable, continuing in memory only",
			fmt.Errorf("%w: %w", contract.ErrCachePersistenceUnavailable, err))
	}
}
