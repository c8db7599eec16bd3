package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/loanlens-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Options controls the descriptive report.
type Options struct {
	// SampleRows determines how many head rows to include in the report.
	SampleRows int
	// TopValues caps the category counts kept per categorical column.
	TopValues int
}

// DefaultOptions returns reasonable defaults for dataset description.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8}
}

// Report is a read-only description of a dataset.
type Report struct {
	Name     string          `json:"name" yaml:"name"`
	Rows     int             `json:"rows" yaml:"rows"`
	Columns  int             `json:"columns" yaml:"columns"`
	Empty    bool            `json:"empty" yaml:"empty"`
	Cols     []ColumnSummary `json:"column_summaries" yaml:"column_summaries"`
	Header   []string        `json:"header,omitempty" yaml:"header,omitempty"`
	Samples  [][]string      `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name" yaml:"name"`
	DType   string `json:"dtype" yaml:"dtype"` // int64|float64|object
	Kind    string `json:"kind" yaml:"kind"`   // numeric|datetime|categorical|text|unknown
	NonNull int    `json:"non_null" yaml:"non_null"`
	Missing int    `json:"missing" yaml:"missing"`
	Unique  int    `json:"unique,omitempty" yaml:"unique,omitempty"`
	// Numeric stats
	Stats     *NumStats       `json:"stats,omitempty" yaml:"stats,omitempty"`
	TopValues []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`
}

// NumStats mirrors the usual count/mean/std/min/quartiles/max summary.
type NumStats struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Std   float64 `json:"std" yaml:"std"`
	Min   float64 `json:"min" yaml:"min"`
	Q25   float64 `json:"q25" yaml:"q25"`
	Q50   float64 `json:"q50" yaml:"q50"`
	Q75   float64 `json:"q75" yaml:"q75"`
	Max   float64 `json:"max" yaml:"max"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// EmptyWarning is the report warning for a dataset with nothing to describe.
const EmptyWarning = "no data to display"

// Describe computes row/column counts, per-column types and numeric summaries.
// The dataset is only read.
func Describe(ds *dataset.Dataset, opt Options) *Report {
	rep := &Report{}
	if ds != nil {
		rep.Name = ds.Name
	}
	if ds.IsEmpty() {
		rep.Empty = true
		rep.Rows = ds.NumRows()
		rep.Columns = ds.NumCols()
		rep.Warnings = append(rep.Warnings, EmptyWarning)
		return rep
	}
	rep.Rows = ds.NumRows()
	rep.Columns = ds.NumCols()
	rep.Header = ds.Columns()

	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	for i := 0; i < ds.NumRows() && i < sampleRows; i++ {
		rep.Samples = append(rep.Samples, ds.Row(i))
	}

	for _, name := range rep.Header {
		cells, _ := ds.Column(name)
		rep.Cols = append(rep.Cols, summarize(name, cells, opt))
	}
	return rep
}

func summarize(name string, cells []string, opt Options) ColumnSummary {
	s := ColumnSummary{Name: name}
	var (
		nums     []float64
		integral = true
		dtCnt    int
		txtCnt   int
		cats     = map[string]int{}
	)
	for _, raw := range cells {
		v := strings.TrimSpace(raw)
		if dataset.IsMissing(v) {
			s.Missing++
			continue
		}
		s.NonNull++
		if x, ok := dataset.ParseFloat(v); ok {
			nums = append(nums, x)
			if x != math.Trunc(x) || strings.ContainsAny(v, ".eE") {
				integral = false
			}
			continue
		}
		if _, ok := parseTimeMaybe(v); ok {
			dtCnt++
			continue
		}
		txtCnt++
		if len(cats) <= 10000 && len(v) <= 64 {
			cats[v]++
		}
	}

	switch {
	case len(nums) == s.NonNull && len(nums) > 0:
		if integral && s.Missing == 0 {
			s.DType = "int64"
		} else {
			s.DType = "float64"
		}
	default:
		s.DType = "object"
	}

	switch {
	case len(nums) > 0 && len(nums) >= dtCnt && len(nums) >= txtCnt:
		s.Kind = "numeric"
		s.Stats = numStats(nums)
	case dtCnt > 0 && dtCnt >= txtCnt:
		s.Kind = "datetime"
	case len(cats) > 0:
		s.Kind = "categorical"
		s.Unique = len(cats)
		s.TopValues = topValues(cats, opt.TopValues)
	case txtCnt > 0:
		s.Kind = "text"
	default:
		s.Kind = "unknown"
	}
	return s
}

func numStats(vals []float64) *NumStats {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	ns := &NumStats{
		Count: len(vals),
		Mean:  stat.Mean(vals, nil),
		Min:   sorted[0],
		Q25:   quantile(sorted, 0.25),
		Q50:   quantile(sorted, 0.5),
		Q75:   quantile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
	if len(vals) > 1 {
		ns.Std = stat.StdDev(vals, nil)
	}
	return ns
}

func topValues(cats map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if limit > 0 && len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Columns))
	if r.Empty {
		b.WriteString("\n[NOTES]\n- " + EmptyWarning + "\n")
		return b.String()
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s/%s (non-null %d, missing %.1f%%)", safeName(c.Name), c.DType, c.Kind, c.NonNull, missPct))
		switch {
		case c.Stats != nil:
			st := c.Stats
			b.WriteString(fmt.Sprintf(" — count %d, mean %.4g, std %.4g, min %.4g, 25%% %.4g, 50%% %.4g, 75%% %.4g, max %.4g",
				st.Count, st.Mean, st.Std, st.Min, st.Q25, st.Q50, st.Q75, st.Max))
		case len(c.TopValues) > 0:
			b.WriteString(" — top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n| ")
		b.WriteString(strings.Join(r.Header, " | "))
		b.WriteString(" |\n|")
		b.WriteString(strings.Repeat(" --- |", len(r.Header)))
		b.WriteString("\n")
		for _, row := range r.Samples {
			vals := make([]string, len(row))
			for i, v := range row {
				if len(v) > 80 {
					v = v[:77] + "..."
				}
				vals[i] = safeVal(v)
			}
			b.WriteString("| " + strings.Join(vals, " | ") + " |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
