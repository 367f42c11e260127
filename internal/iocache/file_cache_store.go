package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// fileEntry is the on-disk body of one cache file.
type fileEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	TTL       int64           `json:"ttl"`
}

// FileCacheStore keeps one JSON file per cache key under a root directory.
type FileCacheStore struct {
	dir string
}

var _ contract.CacheStore = &FileCacheStore{} // Compile-time check

// NewFileCacheStore creates the root directory if needed.
func NewFileCacheStore(dir string) (*FileCacheStore, error) {
	if dir == "" {
		dir = contract.GetCacheDirPath()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %q: %w", dir, err)
	}
	return &FileCacheStore{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *FileCacheStore) Dir() string {
	return s.dir
}

func (s *FileCacheStore) path(key string) string {
	return filepath.Join(s.dir, contract.SanitizeFileName(key)+".json")
}

// Get reads the entry stored for key.
func (s *FileCacheStore) Get(key string) ([]byte, int64, int64, error) {
	body, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, 0, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, 0, 0, err
	}

	var entry fileEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, 0, 0, fmt.Errorf("%w %s: %v", ErrCorruptEntry, key, err)
	}
	return entry.Data, entry.Timestamp, entry.TTL, nil
}

// Set writes the entry for key, replacing any previous file.
func (s *FileCacheStore) Set(key string, value []byte, timestamp int64, ttl int64) error {
	body, err := json.Marshal(fileEntry{Data: value, Timestamp: timestamp, TTL: ttl})
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path(key), body)
}

// Delete removes the file for key. Missing files are not an error.
func (s *FileCacheStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes the root directory and recreates it empty.
func (s *FileCacheStore) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, 0o755)
}

// GetStatus counts the entry files and their cumulative size.
func (s *FileCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(schema.FileBackend),
		Connected: true,
	}

	files, err := jsonFiles(s.dir)
	if err != nil {
		status.Connected = false
		return status, err
	}
	for _, info := range files {
		status.TotalEntries++
		status.PersistedBytes += info.Size()
		modified := info.ModTime()
		if status.LastEntryTime.IsZero() || modified.After(status.LastEntryTime) {
			status.LastEntryTime = modified
		}
		if status.OldestEntryTime.IsZero() || modified.Before(status.OldestEntryTime) {
			status.OldestEntryTime = modified
		}
	}
	return status, nil
}

// Close is a no-op for the file store.
func (s *FileCacheStore) Close() error {
	return nil
}

// jsonFiles lists the .json files directly under dir.
func jsonFiles(dir string) ([]fs.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []fs.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, info)
	}
	return files, nil
}

// writeFileAtomic writes body to a temporary sibling and renames it into place.
func writeFileAtomic(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
