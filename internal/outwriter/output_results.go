package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// resultsHeader is the CSV header shared by single and batch results.
var resultsHeader = []string{
	"repository", "overall", "grade",
	"code_quality", "documentation", "testing", "community", "security", "dependencies",
	"stars", "forks", "open_issues", "timestamp", "duration_ms", "error",
}

// writeResultText prints the score, breakdown and recommendations of one result.
func writeResultText(w io.Writer, r schema.AnalysisResult, cfg *contract.Config) error {
	_, _ = fmt.Fprintf(w, "%s", r.Repository.FullName)
	if r.Repository.URL != "" {
		_, _ = fmt.Fprintf(w, "  %s", r.Repository.URL)
	}
	_, _ = fmt.Fprintln(w)
	if r.Repository.Description != "" {
		_, _ = fmt.Fprintln(w, contract.TruncateText(r.Repository.Description, GetMaxTableTextWidth(cfg, 0)))
	}
	_, _ = fmt.Fprintf(w, "Overall: %d/100  Grade: %s\n\n", r.Score.Overall, contract.GetColorGrade(r.Score.Grade))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "Score", "Weight"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, d := range schema.AllDimensions {
		data = append(data, []string{
			schema.DimensionLabels[d],
			strconv.Itoa(r.Score.Breakdown.Get(d)),
			fmt.Sprintf("%.2f", cfg.Weights[d]),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, "\nRecommendations:")
	for _, rec := range r.Score.Recommendations {
		_, _ = fmt.Fprintf(w, "  - %s\n", rec)
	}

	_, _ = fmt.Fprintf(w, "\nStars: %s  Forks: %s  Open issues: %s",
		humanize.Comma(int64(r.Repository.Stars)),
		humanize.Comma(int64(r.Repository.Forks)),
		humanize.Comma(int64(r.Repository.OpenIssues)))
	if r.Repository.License != "" {
		_, _ = fmt.Fprintf(w, "  License: %s", r.Repository.License)
	}
	if r.Repository.Language != "" {
		_, _ = fmt.Fprintf(w, "  Language: %s", r.Repository.Language)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Analyzed at %s in %v\n", r.Timestamp.Format(contract.DateTimeFormat), time.Duration(r.DurationMs)*time.Millisecond)
	return nil
}

// writeBatchText prints one row per result followed by the failures.
func writeBatchText(w io.Writer, batch schema.BatchAnalysisResult, cfg *contract.Config) error {
	if len(batch.Results) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Repository", "Score", "Grade", "Stars", "Duration"})
		table.Configure(func(c *tablewriter.Config) {
			c.Row.Alignment.Global = tw.AlignRight
		})
		width := GetMaxTableTextWidth(cfg, 45)
		var data [][]string
		for _, r := range batch.Results {
			data = append(data, []string{
				contract.TruncateText(r.Repository.FullName, width),
				strconv.Itoa(r.Score.Overall),
				contract.GetColorGrade(r.Score.Grade),
				humanize.Comma(int64(r.Repository.Stars)),
				(time.Duration(r.DurationMs) * time.Millisecond).String(),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(batch.Errors) > 0 {
		_, _ = fmt.Fprintln(w, "\nFailures:")
		for _, e := range batch.Errors {
			_, _ = fmt.Fprintf(w, "  - %s: %s\n", e.Repository, e.Error)
		}
	}
	_, _ = fmt.Fprintf(w, "\nBatch: %s\n", batch.Summary())
	return nil
}

// writeResultsCSV writes one row per result and one row per failure.
func writeResultsCSV(w io.Writer, results []schema.AnalysisResult, failures []schema.BatchError) error {
	return writeCSVWithHeader(w, resultsHeader, func(cw *csv.Writer) error {
		for _, r := range results {
			row := []string{r.Repository.FullName, strconv.Itoa(r.Score.Overall), string(r.Score.Grade)}
			for _, d := range schema.AllDimensions {
				row = append(row, strconv.Itoa(r.Score.Breakdown.Get(d)))
			}
			row = append(row,
				strconv.Itoa(r.Repository.Stars),
				strconv.Itoa(r.Repository.Forks),
				strconv.Itoa(r.Repository.OpenIssues),
				r.Timestamp.Format(contract.DateTimeFormat),
				strconv.FormatInt(r.DurationMs, 10),
				"",
			)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		for _, f := range failures {
			row := make([]string, len(resultsHeader))
			row[0] = f.Repository
			row[len(row)-1] = f.Error
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
