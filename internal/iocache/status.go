package iocache

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/reposcore/schema"
)

// statusTimeFormat is used for entry and snapshot times in status output.
const statusTimeFormat = "2006-01-02 15:04:05"

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if status.MemoryEntries > 0 {
		_, _ = fmt.Fprintf(w, "Memory Entries: %s\n", humanize.Comma(int64(status.MemoryEntries)))
	}
	if status.PersistenceError != "" {
		_, _ = fmt.Fprintf(w, "Persistence Error: %s\n", status.PersistenceError)
	}
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Persisted Entries: %s\n", humanize.Comma(int64(status.TotalEntries)))
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s (%s)\n", status.LastEntryTime.Format(statusTimeFormat), humanize.Time(status.LastEntryTime))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s (%s)\n", status.OldestEntryTime.Format(statusTimeFormat), humanize.Time(status.OldestEntryTime))
	}
	_, _ = fmt.Fprintf(w, "Persisted Size: %s\n", humanize.Bytes(uint64(max(status.PersistedBytes, 0))))
}

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Repositories: %s\n", humanize.Comma(int64(status.Repositories)))
	_, _ = fmt.Fprintf(w, "Total Snapshots: %s\n", humanize.Comma(int64(status.TotalSnapshots)))
	if status.TotalSnapshots > 0 {
		_, _ = fmt.Fprintf(w, "Last Snapshot: %s (%s)\n", status.LastSnapshot.Format(statusTimeFormat), humanize.Time(status.LastSnapshot))
		_, _ = fmt.Fprintf(w, "Oldest Snapshot: %s (%s)\n", status.OldestSnapshot.Format(statusTimeFormat), humanize.Time(status.OldestSnapshot))
	}
	_, _ = fmt.Fprintf(w, "Persisted Size: %s\n", humanize.Bytes(uint64(max(status.PersistedBytes, 0))))
}
