package regression

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/loanlens-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Age input bounds accepted by PredictAge.
const (
	MinAge = 18
	MaxAge = 100
)

var (
	// ErrDegenerateSplit indicates too few rows or no feature variance to fit a line.
	ErrDegenerateSplit = errors.New("degenerate train/test split")
	// ErrAgeOutOfRange indicates a prediction input outside [MinAge, MaxAge].
	ErrAgeOutOfRange = errors.New("age out of range")
)

// Options configures training.
type Options struct {
	Seed      int64
	TestRatio float64
	Feature   string
	Target    string
}

// DefaultOptions returns an 80/20 split with seed 42 on age → loan amount.
func DefaultOptions() Options {
	return Options{
		Seed:      42,
		TestRatio: 0.2,
		Feature:   dataset.ColAge,
		Target:    dataset.ColLoanAmount,
	}
}

// Model is a fitted single-feature line: target = Intercept + Slope*feature.
type Model struct {
	Feature   string  `json:"feature" yaml:"feature"`
	Target    string  `json:"target" yaml:"target"`
	Intercept float64 `json:"intercept" yaml:"intercept"`
	Slope     float64 `json:"slope" yaml:"slope"`
	// Observed feature range in the training split.
	TrainMin float64 `json:"train_min" yaml:"train_min"`
	TrainMax float64 `json:"train_max" yaml:"train_max"`
}

// Predict evaluates the fitted line at x. Inputs outside the training range
// are extrapolated.
func (m *Model) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// PredictAll evaluates the line at every x.
func (m *Model) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}

// PredictAge predicts for an integer age within [MinAge, MaxAge].
func PredictAge(m *Model, age int) (float64, error) {
	if age < MinAge || age > MaxAge {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrAgeOutOfRange, age, MinAge, MaxAge)
	}
	return m.Predict(float64(age)), nil
}

// Metrics are computed on the held-out split.
type Metrics struct {
	RMSE float64 `json:"rmse" yaml:"rmse"`
	R2   float64 `json:"r2" yaml:"r2"`
}

// Result is the output of one training run.
type Result struct {
	Model     *Model  `json:"model" yaml:"model"`
	Metrics   Metrics `json:"metrics" yaml:"metrics"`
	TrainSize int     `json:"train_size" yaml:"train_size"`
	TestSize  int     `json:"test_size" yaml:"test_size"`
}

// Train splits ds, fits ordinary least squares of Target on Feature and
// evaluates on the test split. A missing column yields a *dataset.ColumnError.
func Train(ds *dataset.Dataset, opt Options) (*Result, error) {
	if opt.Feature == "" || opt.Target == "" {
		def := DefaultOptions()
		if opt.Feature == "" {
			opt.Feature = def.Feature
		}
		if opt.Target == "" {
			opt.Target = def.Target
		}
	}
	if opt.TestRatio <= 0 || opt.TestRatio >= 1 {
		return nil, fmt.Errorf("test ratio %v must be in (0, 1)", opt.TestRatio)
	}
	if err := dataset.Require(ds, "train", opt.Target, opt.Feature); err != nil {
		return nil, err
	}
	x, err := ds.Floats(opt.Feature)
	if err != nil {
		return nil, fmt.Errorf("feature: %w", err)
	}
	y, err := ds.Floats(opt.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	s := TrainTestSplit(x, y, opt.TestRatio, opt.Seed)
	if len(s.XTrain) < 2 || len(s.XTest) == 0 {
		return nil, fmt.Errorf("%w: %d train / %d test rows", ErrDegenerateSplit, len(s.XTrain), len(s.XTest))
	}
	if stat.Variance(s.XTrain, nil) == 0 {
		return nil, fmt.Errorf("%w: feature %q is constant in the training split", ErrDegenerateSplit, opt.Feature)
	}

	alpha, beta := stat.LinearRegression(s.XTrain, s.YTrain, nil, false)
	m := &Model{
		Feature:   opt.Feature,
		Target:    opt.Target,
		Intercept: alpha,
		Slope:     beta,
		TrainMin:  floats.Min(s.XTrain),
		TrainMax:  floats.Max(s.XTrain),
	}
	pred := m.PredictAll(s.XTest)
	return &Result{
		Model:     m,
		Metrics:   Metrics{RMSE: RMSE(s.YTest, pred), R2: R2(s.YTest, pred)},
		TrainSize: len(s.XTrain),
		TestSize:  len(s.XTest),
	}, nil
}
