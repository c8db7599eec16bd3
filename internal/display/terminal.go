package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/loanlens-cli/internal/chart"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Terminal renders a Surface as plain-text tables on w.
type Terminal struct {
	w io.Writer
	// Color enables ANSI colours on messages.
	Color bool
	// MaxChartRows caps the rows printed per chart; 0 prints all.
	MaxChartRows int
}

// NewTerminal returns a terminal surface writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, MaxChartRows: 15}
}

// Table renders tb as a boxed table.
func (t *Terminal) Table(tb Table) {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	if tb.Title != "" {
		w.SetTitle(tb.Title)
	}
	if len(tb.Columns) > 0 {
		w.AppendHeader(toRow(tb.Columns))
	}
	for _, r := range tb.Rows {
		w.AppendRow(toRow(r))
	}
	fmt.Fprintln(t.w, w.Render())
}

// KeyValues prints an aligned list of labelled values under title.
func (t *Terminal) KeyValues(title string, kvs []KV) {
	if title != "" {
		fmt.Fprintln(t.w, title)
	}
	width := 0
	for _, kv := range kvs {
		if len(kv.Key) > width {
			width = len(kv.Key)
		}
	}
	for _, kv := range kvs {
		fmt.Fprintf(t.w, "  %-*s  %s\n", width+1, kv.Key+":", kv.Value)
	}
}

// Chart prints spec as a table of labels and series values, capped at MaxChartRows.
func (t *Terminal) Chart(spec chart.Spec) {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.SetTitle(fmt.Sprintf("%s [%s]", spec.Title, spec.ChartType))
	header := table.Row{spec.XAxis}
	for _, s := range spec.Series {
		header = append(header, s.Name)
	}
	w.AppendHeader(header)
	labels := spec.Labels()
	shown := len(labels)
	if t.MaxChartRows > 0 && shown > t.MaxChartRows {
		shown = t.MaxChartRows
	}
	for i := 0; i < shown; i++ {
		row := table.Row{labels[i]}
		for _, s := range spec.Series {
			row = append(row, strconv.FormatFloat(s.Data[i].Value, 'f', -1, 64))
		}
		w.AppendRow(row)
	}
	if shown < len(labels) {
		w.AppendFooter(table.Row{fmt.Sprintf("… %d more", len(labels)-shown)})
	}
	fmt.Fprintln(t.w, w.Render())
	if spec.Caption != "" {
		fmt.Fprintln(t.w, spec.Caption)
	}
}

// Message prints msg with a level marker, coloured when Color is set.
func (t *Terminal) Message(level Level, msg string) {
	prefix := map[Level]string{
		LevelSuccess: "✓",
		LevelInfo:    "•",
		LevelWarning: "⚠",
		LevelError:   "✗",
	}[level]
	line := prefix + " " + msg
	if t.Color {
		switch level {
		case LevelSuccess:
			line = text.FgGreen.Sprint(line)
		case LevelWarning:
			line = text.FgYellow.Sprint(line)
		case LevelError:
			line = text.FgRed.Sprint(line)
		}
	}
	fmt.Fprintln(t.w, line)
}

func toRow(vals []string) table.Row {
	row := make(table.Row, len(vals))
	for i, v := range vals {
		row[i] = v
	}
	return row
}
