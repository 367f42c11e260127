package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// weightRow is the render model of one dimension in the weights output.
type weightRow struct {
	Dimension schema.Dimension `json:"dimension"`
	Label     string           `json:"label"`
	Weight    float64          `json:"weight"`
	Formula   string           `json:"formula"`
}

func buildWeightRows(weights map[schema.Dimension]float64, formulas map[schema.Dimension]string) []weightRow {
	rows := make([]weightRow, 0, len(schema.AllDimensions))
	for _, d := range schema.AllDimensions {
		rows = append(rows, weightRow{
			Dimension: d,
			Label:     schema.DimensionLabels[d],
			Weight:    weights[d],
			Formula:   formulas[d],
		})
	}
	return rows
}

func writeWeightsText(w io.Writer, rows []weightRow, cfg *contract.Config) error {
	_, _ = fmt.Fprintln(w, "Overall score = weighted sum of dimension scores, rounded and clamped to 0-100")

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "Weight", "Formula"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})
	width := GetMaxTableTextWidth(cfg, 30)
	var data [][]string
	var sum float64
	for _, row := range rows {
		sum += row.Weight
		data = append(data, []string{row.Label, fmt.Sprintf("%.2f", row.Weight), contract.TruncateText(row.Formula, width)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Weight sum: %.2f\n", sum)
	return nil
}

func writeWeightsCSV(w io.Writer, rows []weightRow) error {
	return writeCSVWithHeader(w, []string{"dimension", "weight", "formula"}, func(cw *csv.Writer) error {
		for _, row := range rows {
			if err := cw.Write([]string{string(row.Dimension), formatFloat(row.Weight), row.Formula}); err != nil {
				return err
			}
		}
		return nil
	})
}
