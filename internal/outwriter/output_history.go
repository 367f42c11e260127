package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// trendRow pairs a metric label with its trend.
type trendRow struct {
	Name  string
	Trend schema.MetricTrend
}

// trendRows lists the overall trend first and then each dimension in display order.
func trendRows(report schema.TrendReport) []trendRow {
	rows := []trendRow{{Name: "Overall", Trend: report.Overall}}
	for _, d := range schema.AllDimensions {
		if t, ok := report.Dimensions[d]; ok {
			rows = append(rows, trendRow{Name: schema.DimensionLabels[d], Trend: t})
		}
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeTrendsText(w io.Writer, report schema.TrendReport) error {
	_, _ = fmt.Fprintf(w, "Trends for %s: %s -> %s\n",
		report.RepositoryID,
		report.Previous.Format(contract.DateTimeFormat),
		report.Current.Format(contract.DateTimeFormat))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Current", "Previous", "Change", "Change %", "Trend"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, row := range trendRows(report) {
		data = append(data, []string{
			row.Name,
			formatFloat(row.Trend.Current),
			formatFloat(row.Trend.Previous),
			fmt.Sprintf("%+.2f", row.Trend.Change),
			fmt.Sprintf("%+.2f%%", row.Trend.ChangePercent),
			contract.GetColorTrend(string(row.Trend.Trend)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeTrendsCSV(w io.Writer, report schema.TrendReport) error {
	header := []string{"repository", "metric", "current", "previous", "change", "change_percent", "trend"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range trendRows(report) {
			if err := cw.Write([]string{
				report.RepositoryID,
				row.Name,
				formatFloat(row.Trend.Current),
				formatFloat(row.Trend.Previous),
				formatFloat(row.Trend.Change),
				formatFloat(row.Trend.ChangePercent),
				string(row.Trend.Trend),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeStatisticsText(w io.Writer, stats schema.HistoryStatistics) error {
	_, _ = fmt.Fprintf(w, "Statistics for %s\n", stats.RepositoryID)
	_, _ = fmt.Fprintf(w, "Snapshots: %d\n", stats.Count)
	_, _ = fmt.Fprintf(w, "Mean: %s\n", formatFloat(stats.Mean))
	_, _ = fmt.Fprintf(w, "Max: %s\n", formatFloat(stats.Max))
	_, _ = fmt.Fprintf(w, "Min: %s\n", formatFloat(stats.Min))
	_, _ = fmt.Fprintf(w, "Trend: %s\n", contract.GetColorTrend(string(stats.Trend)))
	return nil
}

func writeStatisticsCSV(w io.Writer, stats schema.HistoryStatistics) error {
	header := []string{"repository", "count", "mean", "max", "min", "trend"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			stats.RepositoryID,
			strconv.Itoa(stats.Count),
			formatFloat(stats.Mean),
			formatFloat(stats.Max),
			formatFloat(stats.Min),
			string(stats.Trend),
		})
	})
}

func writeCacheStatusCSV(w io.Writer, status schema.CacheStatus) error {
	header := []string{"backend", "connected", "memory_entries", "total_entries", "last_entry_time", "oldest_entry_time", "persisted_bytes", "persistence_error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			status.Backend,
			strconv.FormatBool(status.Connected),
			strconv.Itoa(status.MemoryEntries),
			strconv.Itoa(status.TotalEntries),
			formatTime(status.LastEntryTime),
			formatTime(status.OldestEntryTime),
			strconv.FormatInt(status.PersistedBytes, 10),
			status.PersistenceError,
		})
	})
}

func writeHistoryStatusCSV(w io.Writer, status schema.HistoryStatus) error {
	header := []string{"backend", "connected", "repositories", "total_snapshots", "last_snapshot", "oldest_snapshot", "persisted_bytes"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			status.Backend,
			strconv.FormatBool(status.Connected),
			strconv.Itoa(status.Repositories),
			strconv.Itoa(status.TotalSnapshots),
			formatTime(status.LastSnapshot),
			formatTime(status.OldestSnapshot),
			strconv.FormatInt(status.PersistedBytes, 10),
		})
	})
}
