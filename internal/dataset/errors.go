package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned alongside an empty dataset when the input file is missing.
	ErrFileNotFound = errors.New("dataset file not found")
	// ErrMissingColumn indicates a required column is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrNotNumeric indicates a cell could not be parsed as a number.
	ErrNotNumeric = errors.New("non-numeric value")
)

// ColumnError names the column an operation needed but did not find.
type ColumnError struct {
	Column string
	Op     string
}

func (e *ColumnError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: data does not contain column %q", e.Op, e.Column)
	}
	return fmt.Sprintf("data does not contain column %q", e.Column)
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// Require returns a ColumnError for the first column ds lacks.
func Require(ds *Dataset, op string, cols ...string) error {
	for _, c := range cols {
		if !ds.Has(c) {
			return &ColumnError{Column: c, Op: op}
		}
	}
	return nil
}
