// Package display defines the surface a render pass writes to. A surface only
// knows four things: tables, key-value lists, chart specifications and
// leveled messages.
package display

import (
	"github.com/KaramelBytes/loanlens-cli/internal/chart"
	"github.com/shopspring/decimal"
)

// Level classifies a message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Table is a titled grid of cells.
type Table struct {
	Title   string     `json:"title" yaml:"title"`
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// KV is one labelled value.
type KV struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Surface receives the output of a render pass.
type Surface interface {
	Table(t Table)
	KeyValues(title string, kvs []KV)
	Chart(spec chart.Spec)
	Message(level Level, text string)
}

// CurrencySymbol prefixes formatted amounts.
const CurrencySymbol = "R$"

// FormatCurrency renders an amount with two decimals, e.g. R$7000.00.
func FormatCurrency(v float64) string {
	return CurrencySymbol + decimal.NewFromFloat(v).StringFixed(2)
}
