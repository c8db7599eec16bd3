// Package dashboard runs a render pass: load the dataset, describe it, derive
// charts, train the regression and predict for one age, writing everything to a
// display.Surface.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/loanlens-cli/internal/analysis"
	"github.com/KaramelBytes/loanlens-cli/internal/chart"
	"github.com/KaramelBytes/loanlens-cli/internal/dataset"
	"github.com/KaramelBytes/loanlens-cli/internal/display"
	"github.com/KaramelBytes/loanlens-cli/internal/logging"
	"github.com/KaramelBytes/loanlens-cli/internal/regression"
	"github.com/google/uuid"
)

// Section selects part of a render pass.
type Section string

const (
	SectionData   Section = "data"
	SectionCharts Section = "charts"
	SectionModel  Section = "model"
)

// AllSections lists every section in render order.
var AllSections = []Section{SectionData, SectionCharts, SectionModel}

// DefaultAge is the prediction input when a request gives none.
const DefaultAge = 30

// ParseSections parses a comma-separated section list. Empty means all.
func ParseSections(s string) ([]Section, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []Section
	for _, part := range strings.Split(s, ",") {
		sec := Section(strings.ToLower(strings.TrimSpace(part)))
		switch sec {
		case SectionData, SectionCharts, SectionModel:
			out = append(out, sec)
		default:
			return nil, fmt.Errorf("unknown section %q (use data|charts|model)", part)
		}
	}
	return out, nil
}

// Options configures the components of a pass.
type Options struct {
	DatasetPath string
	Describe    analysis.Options
	Charts      chart.Options
	Train       regression.Options
	// ChartDir, when set, receives a PNG per chart.
	ChartDir string
}

// DefaultOptions returns the default component options.
func DefaultOptions() Options {
	return Options{
		DatasetPath: "loan_data.csv",
		Describe:    analysis.DefaultOptions(),
		Charts:      chart.DefaultOptions(),
		Train:       regression.DefaultOptions(),
	}
}

// Request is one render pass.
type Request struct {
	// Path overrides Options.DatasetPath.
	Path string
	// Age is the prediction input; nil means DefaultAge.
	Age *int
	// Sections limits the pass; empty means all.
	Sections []Section
}

// Prediction is the predictor output.
type Prediction struct {
	Age    int     `json:"age" yaml:"age"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// Outcome is the structured result of a pass.
type Outcome struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Path        string             `json:"path" yaml:"path"`
	FileMissing bool               `json:"file_missing,omitempty" yaml:"file_missing,omitempty"`
	Report      *analysis.Report   `json:"report,omitempty" yaml:"report,omitempty"`
	Charts      []chart.Spec       `json:"charts,omitempty" yaml:"charts,omitempty"`
	ChartFiles  []string           `json:"chart_files,omitempty" yaml:"chart_files,omitempty"`
	Training    *regression.Result `json:"training,omitempty" yaml:"training,omitempty"`
	Prediction  *Prediction        `json:"prediction,omitempty" yaml:"prediction,omitempty"`
	// TrainErr is the recoverable training failure, if any.
	TrainErr error `json:"-" yaml:"-"`
}

// Service owns the dataset loader and runs render passes.
type Service struct {
	loader dataset.Loader
	opts   Options
	logger *slog.Logger
}

// NewService returns a service loading through loader. A nil loader reads
// the file on every pass.
func NewService(loader dataset.Loader, opts Options) *Service {
	if loader == nil {
		loader = dataset.LoaderFunc(dataset.Load)
	}
	return &Service{loader: loader, opts: opts, logger: logging.New("dashboard")}
}

// Options returns the service options.
func (s *Service) Options() Options { return s.opts }

// Render performs one pass for req and writes it to out. Missing files and
// missing columns are reported on out; other failures end the pass with an error.
func (s *Service) Render(ctx context.Context, req Request, out display.Surface) (*Outcome, error) {
	start := time.Now()
	oc := &Outcome{RunID: uuid.NewString(), Path: req.Path}
	if oc.Path == "" {
		oc.Path = s.opts.DatasetPath
	}
	if rec, ok := out.(*display.Recorder); ok {
		rec.SetRunID(oc.RunID)
	}
	logger := s.logger.With("run_id", oc.RunID, "path", oc.Path)

	ds, err := s.loader.Load(oc.Path)
	if err != nil {
		if !errors.Is(err, dataset.ErrFileNotFound) {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		logger.Warn("dataset file not found")
		oc.FileMissing = true
		out.Message(display.LevelError, fmt.Sprintf("File %q not found. Check the path and try again.", oc.Path))
		if ds == nil {
			ds = dataset.Empty()
		}
	}

	for _, sec := range sectionsOf(req) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch sec {
		case SectionData:
			oc.Report = s.renderData(ds, out)
		case SectionCharts:
			if err := s.renderCharts(ds, out, oc); err != nil {
				return nil, err
			}
		case SectionModel:
			if err := s.renderModel(ds, req, out, oc); err != nil {
				return nil, err
			}
		}
	}
	logger.Info("render pass complete", "rows", ds.NumRows(), "elapsed", time.Since(start))
	return oc, nil
}

func sectionsOf(req Request) []Section {
	if len(req.Sections) == 0 {
		return AllSections
	}
	seen := map[Section]bool{}
	for _, s := range req.Sections {
		seen[s] = true
	}
	var out []Section
	for _, s := range AllSections {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}

func (s *Service) renderData(ds *dataset.Dataset, out display.Surface) *analysis.Report {
	rep := analysis.Describe(ds, s.opts.Describe)
	if rep.Empty {
		out.Message(display.LevelWarning, "No data to display.")
		return rep
	}
	out.KeyValues("Dataset", []display.KV{
		{Key: "File", Value: rep.Name},
		{Key: "Rows", Value: strconv.Itoa(rep.Rows)},
		{Key: "Columns", Value: strconv.Itoa(rep.Columns)},
	})
	if len(rep.Samples) > 0 {
		out.Table(display.Table{Title: "Data", Columns: rep.Header, Rows: rep.Samples})
	}
	if t, ok := summaryTable(rep); ok {
		out.Table(t)
	}
	out.Table(typesTable(rep))
	return rep
}

// summaryTable lays out numeric statistics with one column per numeric field.
func summaryTable(rep *analysis.Report) (display.Table, bool) {
	var cols []analysis.ColumnSummary
	for _, c := range rep.Cols {
		if c.Stats != nil {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return display.Table{}, false
	}
	t := display.Table{Title: "Summary Statistics", Columns: []string{"stat"}}
	for _, c := range cols {
		t.Columns = append(t.Columns, c.Name)
	}
	stats := []struct {
		name string
		get  func(*analysis.NumStats) float64
	}{
		{"count", func(n *analysis.NumStats) float64 { return float64(n.Count) }},
		{"mean", func(n *analysis.NumStats) float64 { return n.Mean }},
		{"std", func(n *analysis.NumStats) float64 { return n.Std }},
		{"min", func(n *analysis.NumStats) float64 { return n.Min }},
		{"25%", func(n *analysis.NumStats) float64 { return n.Q25 }},
		{"50%", func(n *analysis.NumStats) float64 { return n.Q50 }},
		{"75%", func(n *analysis.NumStats) float64 { return n.Q75 }},
		{"max", func(n *analysis.NumStats) float64 { return n.Max }},
	}
	for _, st := range stats {
		row := []string{st.name}
		for _, c := range cols {
			row = append(row, strconv.FormatFloat(st.get(c.Stats), 'f', 2, 64))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, true
}

func typesTable(rep *analysis.Report) display.Table {
	t := display.Table{Title: "Data Types", Columns: []string{"column", "dtype", "kind", "missing"}}
	for _, c := range rep.Cols {
		t.Rows = append(t.Rows, []string{c.Name, c.DType, c.Kind, strconv.Itoa(c.Missing)})
	}
	return t
}

func (s *Service) renderCharts(ds *dataset.Dataset, out display.Surface, oc *Outcome) error {
	if ds.IsEmpty() {
		out.Message(display.LevelWarning, "No data available to generate charts.")
		return nil
	}
	specs, err := chart.Build(ds, s.opts.Charts)
	if err != nil {
		return fmt.Errorf("build charts: %w", err)
	}
	oc.Charts = specs
	for _, spec := range specs {
		out.Chart(spec)
	}
	if s.opts.ChartDir != "" && len(specs) > 0 {
		files, err := chart.RenderAll(specs, s.opts.ChartDir)
		oc.ChartFiles = files
		if err != nil {
			s.logger.Warn("chart rendering failed", "dir", s.opts.ChartDir, "error", err)
			out.Message(display.LevelWarning, fmt.Sprintf("Some charts could not be rendered: %v", err))
		}
		if len(files) > 0 {
			out.Message(display.LevelInfo, fmt.Sprintf("Wrote %d chart image(s) to %s", len(files), s.opts.ChartDir))
		}
	}
	return nil
}

func (s *Service) renderModel(ds *dataset.Dataset, req Request, out display.Surface, oc *Outcome) error {
	if ds.IsEmpty() {
		out.Message(display.LevelWarning, "No data available to train the model.")
		return nil
	}
	res, err := regression.Train(ds, s.opts.Train)
	if err != nil {
		var ce *dataset.ColumnError
		if errors.As(err, &ce) {
			oc.TrainErr = err
			out.Message(display.LevelError, fmt.Sprintf("The data does not contain the column %q.", ce.Column))
			return nil
		}
		return fmt.Errorf("train model: %w", err)
	}
	oc.Training = res
	out.KeyValues("Model", []display.KV{
		{Key: "Feature", Value: res.Model.Feature},
		{Key: "Target", Value: res.Model.Target},
		{Key: "Train / test rows", Value: fmt.Sprintf("%d / %d", res.TrainSize, res.TestSize)},
		{Key: "Slope", Value: strconv.FormatFloat(res.Model.Slope, 'f', 4, 64)},
		{Key: "Intercept", Value: strconv.FormatFloat(res.Model.Intercept, 'f', 2, 64)},
		{Key: "RMSE", Value: fmt.Sprintf("%.2f", res.Metrics.RMSE)},
		{Key: "R²", Value: fmt.Sprintf("%.2f%%", res.Metrics.R2*100)},
	})

	age := DefaultAge
	if req.Age != nil {
		age = *req.Age
	}
	amount, err := regression.PredictAge(res.Model, age)
	if err != nil {
		return err
	}
	oc.Prediction = &Prediction{Age: age, Amount: amount}
	out.Message(display.LevelSuccess, fmt.Sprintf("Predicted loan amount for a %d-year-old applicant: %s", age, display.FormatCurrency(amount)))
	return nil
}
