package evaluate

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render writes the accuracy, the per-class metrics table and the confusion
// matrix as plain-text tables.
func (r *Report) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Accuracy: %.4f (%.2f%%)\n\n", r.Accuracy, 100*r.Accuracy); err != nil {
		return err
	}

	metrics := newTable(w)
	metrics.AppendHeader(table.Row{"class", "precision", "recall", "f1-score", "support"})
	for _, m := range r.PerClass {
		metrics.AppendRow(metricsRow(m))
	}
	metrics.AppendSeparator()
	metrics.AppendRow(metricsRow(r.Macro))
	metrics.AppendRow(metricsRow(r.Weighted))
	metrics.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	metrics.Render()

	if _, err := fmt.Fprintln(w, "\nConfusion matrix (rows: true, columns: predicted)"); err != nil {
		return err
	}
	confusion := newTable(w)
	header := table.Row{""}
	for _, c := range r.Classes {
		header = append(header, c)
	}
	confusion.AppendHeader(header)
	for i, c := range r.Classes {
		row := table.Row{c}
		for _, n := range r.Confusion[i] {
			row = append(row, n)
		}
		confusion.AppendRow(row)
	}
	confusion.Render()
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func metricsRow(m ClassMetrics) table.Row {
	return table.Row{
		m.Class,
		fmt.Sprintf("%.2f", m.Precision),
		fmt.Sprintf("%.2f", m.Recall),
		fmt.Sprintf("%.2f", m.F1),
		m.Support,
	}
}
