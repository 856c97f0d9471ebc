package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/bikelane-risk/internal/dataset"
	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/tree"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// labelFlags are the flags shared by commands reading labelled data.
type labelFlags struct {
	scheme       string
	defaultClass string
}

func (l *labelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.scheme, "labels", domain.ThreeClass.Name, "label scheme: three-class or binary")
	cmd.Flags().StringVar(&l.defaultClass, "label-default", "", "class for labels the scheme does not know (rejected when empty)")
}

func (l *labelFlags) mapping() (*dataset.LabelMapping, error) {
	m, ok := domain.LabelScheme(l.scheme)
	if !ok {
		return nil, fmt.Errorf("unknown label scheme %q", l.scheme)
	}
	if l.defaultClass != "" {
		m = m.WithDefault(l.defaultClass)
	}
	return m, nil
}

// readDataset loads features (and labels when mapping is not nil) from a CSV
// file.
func readDataset(path string, features []string, mapping *dataset.LabelMapping, fillMissing bool) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	schema := dataset.Schema{
		Features:           features,
		FillMissingColumns: fillMissing,
	}
	if mapping != nil {
		schema.LabelColumns = domain.LabelColumns()
		schema.Labels = mapping
	}
	d, err := dataset.ReadCSV(f, schema)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return d, nil
}

// reportClasses lists the model's classes followed by any class in truth the
// model never saw.
func reportClasses(t *tree.Tree, truth []string) []string {
	classes := append([]string(nil), t.Classes...)
	known := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		known[c] = struct{}{}
	}
	for _, c := range truth {
		if _, ok := known[c]; !ok {
			known[c] = struct{}{}
			classes = append(classes, c)
		}
	}
	return classes
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// renderDistribution prints the class counts and shares of labels.
func renderDistribution(w io.Writer, title string, labels []string) {
	classes, counts := dataset.CountLabels(labels)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"class", "samples", "share"})
	for _, c := range classes {
		share := 0.0
		if len(labels) > 0 {
			share = float64(counts[c]) / float64(len(labels))
		}
		t.AppendRow(table.Row{c, counts[c], fmt.Sprintf("%.1f%%", 100*share)})
	}
	t.AppendFooter(table.Row{"total", len(labels), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}
