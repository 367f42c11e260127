package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// FileHistoryStore keeps one JSON file per repository under a root directory.
// Snapshot timestamps are stored as RFC 3339 strings.
type FileHistoryStore struct {
	dir string
}

var _ contract.HistoryStore = &FileHistoryStore{} // Compile-time check

// NewFileHistoryStore creates the root directory if needed.
func NewFileHistoryStore(dir string) (*FileHistoryStore, error) {
	if dir == "" {
		dir = contract.GetHistoryDirPath()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %q: %w", dir, err)
	}
	return &FileHistoryStore{dir: dir}, nil
}

// historyFileName maps owner/name to owner_name.json.
func historyFileName(repositoryID string) string {
	return contract.SanitizeFileName(strings.ReplaceAll(repositoryID, "/", "_")) + ".json"
}

// Load reads the history of one repository, or returns nil when no file exists.
func (s *FileHistoryStore) Load(repositoryID string) (*schema.AnalysisHistory, error) {
	history, err := readHistoryFile(filepath.Join(s.dir, historyFileName(repositoryID)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return history, nil
}

// Save writes the full history of one repository.
func (s *FileHistoryStore) Save(history *schema.AnalysisHistory) error {
	body, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, historyFileName(history.RepositoryID)), body)
}

// LoadAll reads every history file, skipping ones that cannot be decoded.
func (s *FileHistoryStore) LoadAll() ([]schema.AnalysisHistory, error) {
	files, err := jsonFiles(s.dir)
	if err != nil {
		return nil, err
	}

	histories := make([]schema.AnalysisHistory, 0, len(files))
	for _, info := range files {
		history, err := readHistoryFile(filepath.Join(s.dir, info.Name()))
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping history file %s", info.Name()), err)
			continue
		}
		histories = append(histories, *history)
	}
	sort.Slice(histories, func(i, j int) bool {
		return histories[i].RepositoryID < histories[j].RepositoryID
	})
	return histories, nil
}

// Clear removes the root directory and recreates it empty.
func (s *FileHistoryStore) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, 0o755)
}

// GetStatus summarizes the stored histories.
func (s *FileHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(schema.FileBackend),
		Connected: true,
	}

	files, err := jsonFiles(s.dir)
	if err != nil {
		status.Connected = false
		return status, err
	}
	for _, info := range files {
		status.PersistedBytes += info.Size()
	}

	histories, err := s.LoadAll()
	if err != nil {
		return status, err
	}
	status.Repositories = len(histories)
	for _, h := range histories {
		status.TotalSnapshots += len(h.Snapshots)
		for _, snap := range h.Snapshots {
			if status.LastSnapshot.IsZero() || snap.Timestamp.After(status.LastSnapshot) {
				status.LastSnapshot = snap.Timestamp
			}
			if status.OldestSnapshot.IsZero() || snap.Timestamp.Before(status.OldestSnapshot) {
				status.OldestSnapshot = snap.Timestamp
			}
		}
	}
	return status, nil
}

// Close is a no-op for the file store.
func (s *FileHistoryStore) Close() error {
	return nil
}

func readHistoryFile(path string) (*schema.AnalysisHistory, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var history schema.AnalysisHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("failed to decode history %s: %w", filepath.Base(path), err)
	}
	return &history, nil
}
