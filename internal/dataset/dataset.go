package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known loan dataset columns.
const (
	ColLoanAmount = "loan_amnt"
	ColAge        = "person_age"
	ColEducation  = "person_education"
)

// Dataset is an in-memory table loaded from a delimited file.
// It is read-only once built; accessors hand out copies.
type Dataset struct {
	Name string
	Path string

	header []string
	index  map[string]int
	rows   [][]string
}

// New builds a Dataset from a header and rows. Short rows are padded with
// empty cells; rows wider than the header are rejected.
func New(name string, header []string, rows [][]string) (*Dataset, error) {
	ds := &Dataset{Name: name, index: make(map[string]int, len(header))}
	ds.header = make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		ds.header[i] = h
		if _, dup := ds.index[h]; !dup {
			ds.index[h] = i
		}
	}
	ds.rows = make([][]string, 0, len(rows))
	for i, rec := range rows {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(rec), len(header))
		}
		row := make([]string, len(header))
		copy(row, rec)
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

// Empty returns a dataset with zero rows and zero columns.
func Empty() *Dataset {
	return &Dataset{index: map[string]int{}}
}

// IsEmpty reports whether the dataset has no rows or no columns.
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.rows) == 0 || len(d.header) == 0
}

// NumRows returns the number of data rows (header excluded).
func (d *Dataset) NumRows() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int {
	if d == nil {
		return 0
	}
	return len(d.header)
}

// Columns returns a copy of the header.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.header))
	copy(out, d.header)
	return out
}

// Has reports whether the named column exists.
func (d *Dataset) Has(col string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[col]
	return ok
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.header))
	copy(out, d.rows[i])
	return out
}

// Column returns the raw cells of the named column.
func (d *Dataset) Column(col string) ([]string, error) {
	if !d.Has(col) {
		return nil, &ColumnError{Column: col, Op: "select"}
	}
	j := d.index[col]
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Floats parses the named column as float64. Every cell must be numeric.
func (d *Dataset) Floats(col string) ([]float64, error) {
	cells, err := d.Column(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, ok := ParseFloat(c)
		if !ok {
			return nil, fmt.Errorf("%w: column %q row %d value %q", ErrNotNumeric, col, i+1, c)
		}
		out[i] = v
	}
	return out, nil
}

// ParseFloat parses a trimmed cell as a finite float. Blank, NaN and
// infinite cells are not numeric.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsMissing reports whether a cell is blank or a NaN marker.
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}
