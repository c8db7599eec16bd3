package display

import (
	"sync"

	"github.com/KaramelBytes/loanlens-cli/internal/chart"
)

// Block kinds recorded on a Page.
const (
	KindTable     = "table"
	KindKeyValues = "key_values"
	KindChart     = "chart"
	KindMessage   = "message"
)

// Block is one primitive call, in order.
type Block struct {
	Kind      string      `json:"kind" yaml:"kind"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	Table     *Table      `json:"table,omitempty" yaml:"table,omitempty"`
	KeyValues []KV        `json:"key_values,omitempty" yaml:"key_values,omitempty"`
	Chart     *chart.Spec `json:"chart,omitempty" yaml:"chart,omitempty"`
	Level     Level       `json:"level,omitempty" yaml:"level,omitempty"`
	Text      string      `json:"text,omitempty" yaml:"text,omitempty"`
}

// Page is the serialisable output of a render pass.
type Page struct {
	RunID  string  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// Recorder is a Surface that collects blocks into a Page.
type Recorder struct {
	mu   sync.Mutex
	page Page
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{page: Page{Blocks: []Block{}}}
}

func (r *Recorder) add(b Block) {
	r.mu.Lock()
	r.page.Blocks = append(r.page.Blocks, b)
	r.mu.Unlock()
}

// Table records a table block.
func (r *Recorder) Table(t Table) {
	r.add(Block{Kind: KindTable, Title: t.Title, Table: &t})
}

// KeyValues records a titled list of labelled values.
func (r *Recorder) KeyValues(title string, kvs []KV) {
	r.add(Block{Kind: KindKeyValues, Title: title, KeyValues: kvs})
}

// Chart records a chart specification.
func (r *Recorder) Chart(spec chart.Spec) {
	r.add(Block{Kind: KindChart, Title: spec.Title, Chart: &spec})
}

// Message records a leveled message.
func (r *Recorder) Message(level Level, text string) {
	r.add(Block{Kind: KindMessage, Level: level, Text: text})
}

// Page returns a copy of the recorded page.
func (r *Recorder) Page() Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := Page{RunID: r.page.RunID, Blocks: make([]Block, len(r.page.Blocks))}
	copy(out.Blocks, r.page.Blocks)
	return out
}

// SetRunID tags the page with the identifier of the pass that produced it.
func (r *Recorder) SetRunID(id string) {
	r.mu.Lock()
	r.page.RunID = id
	r.mu.Unlock()
}

// Messages returns the recorded messages at level.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.page.Blocks {
		if b.Kind == KindMessage && b.Level == level {
			out = append(out, b.Text)
		}
	}
	return out
}
