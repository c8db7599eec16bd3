package chart

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/loanlens-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
)

// Chart names.
const (
	NameAmountDistribution = "loan_amount_distribution"
	NameAmountByAgeEdu     = "loan_amount_by_age_education"
	NameAmountByAge        = "loan_amount_by_age"
)

// MaxHistogramBins bounds the age histogram size.
const MaxHistogramBins = 1000

// ErrTooManyBins is returned when the age range needs more than MaxHistogramBins bins.
var ErrTooManyBins = errors.New("age range too wide for histogram")

// Options controls chart derivation.
type Options struct {
	// BinWidth is the age histogram bin width in years.
	BinWidth float64
}

// DefaultOptions returns the default chart options.
func DefaultOptions() Options { return Options{BinWidth: 5} }

// Build derives the chart specifications ds supports. A chart whose columns
// are missing is skipped. Non-numeric ages or amounts are an error.
func Build(ds *dataset.Dataset, opt Options) ([]Spec, error) {
	if ds.IsEmpty() {
		return nil, nil
	}
	var specs []Spec
	if ds.Has(dataset.ColLoanAmount) {
		s, err := AmountDistribution(ds)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	if ds.Has(dataset.ColAge) && ds.Has(dataset.ColEducation) && ds.Has(dataset.ColLoanAmount) {
		s, err := AmountByAgeAndEducation(ds)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	if ds.Has(dataset.ColAge) && ds.Has(dataset.ColLoanAmount) {
		s, err := AmountByAge(ds, opt.BinWidth)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// AmountDistribution counts occurrences of each loan amount, most frequent first.
func AmountDistribution(ds *dataset.Dataset) (Spec, error) {
	cells, err := ds.Column(dataset.ColLoanAmount)
	if err != nil {
		return Spec{}, err
	}
	counts := map[string]int{}
	for _, c := range cells {
		if dataset.IsMissing(c) {
			continue
		}
		key := strings.TrimSpace(c)
		if v, ok := dataset.ParseFloat(key); ok {
			key = fmtNum(v)
		}
		counts[key]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return lessValue(keys[i], keys[j])
	})
	points := make([]Point, len(keys))
	for i, k := range keys {
		points[i] = Point{Label: k, Value: float64(counts[k])}
	}
	return Spec{
		Name:      NameAmountDistribution,
		ChartType: TypeBar,
		Title:     "Distribution of Loan Amounts",
		Caption:   "Frequency of each loan amount in the dataset.",
		XAxis:     "Loan Amount",
		YAxis:     "Number of Loans",
		Series:    []Series{{Name: "Loans", Data: points, Color: skyBlue}},
	}, nil
}

// AmountByAgeAndEducation sums loan amounts per age bucket, one series per
// education level.
func AmountByAgeAndEducation(ds *dataset.Dataset) (Spec, error) {
	buckets, err := AgeBuckets(ds)
	if err != nil {
		return Spec{}, err
	}
	edu, err := ds.Column(dataset.ColEducation)
	if err != nil {
		return Spec{}, err
	}
	amounts, err := ds.Floats(dataset.ColLoanAmount)
	if err != nil {
		return Spec{}, err
	}

	sums := map[string]map[string]float64{}
	for i, b := range buckets {
		if b == "" {
			continue
		}
		level := strings.TrimSpace(edu[i])
		if level == "" {
			continue
		}
		if sums[level] == nil {
			sums[level] = map[string]float64{}
		}
		sums[level][b] += amounts[i]
	}
	levels := make([]string, 0, len(sums))
	for l := range sums {
		levels = append(levels, l)
	}
	sort.Strings(levels)

	series := make([]Series, len(levels))
	for i, l := range levels {
		pts := make([]Point, len(AgeBucketLabels))
		for j, b := range AgeBucketLabels {
			pts[j] = Point{Label: b, Value: sums[l][b]}
		}
		series[i] = Series{Name: l, Data: pts, Color: defaultColors[i%len(defaultColors)]}
	}
	return Spec{
		Name:       NameAmountByAgeEdu,
		ChartType:  TypeGroupedBar,
		Title:      "Loan Amounts by Age Group and Education Level",
		Caption:    "Total loan amount per age group, split by education level.",
		XAxis:      "Age Group",
		YAxis:      "Total Loan Amount",
		Series:     series,
		ShowLegend: true,
	}, nil
}

// AmountByAge sums loan amounts over age bins of width binWidth.
func AmountByAge(ds *dataset.Dataset, binWidth float64) (Spec, error) {
	if binWidth <= 0 {
		binWidth = DefaultOptions().BinWidth
	}
	ages, err := ds.Floats(dataset.ColAge)
	if err != nil {
		return Spec{}, err
	}
	amounts, err := ds.Floats(dataset.ColLoanAmount)
	if err != nil {
		return Spec{}, err
	}
	spec := Spec{
		Name:      NameAmountByAge,
		ChartType: TypeHistogram,
		Title:     "Distribution of Loan Amounts by Age",
		Caption:   "Total loan amount per age range.",
		XAxis:     "Age",
		YAxis:     "Total Loan Amount",
	}
	if len(ages) == 0 {
		spec.Series = []Series{{Name: "Loans", Color: defaultColors[0]}}
		return spec, nil
	}
	lo := math.Floor(floats.Min(ages)/binWidth) * binWidth
	hi := math.Floor(floats.Max(ages)/binWidth) * binWidth
	span := (hi - lo) / binWidth
	if math.IsNaN(span) || span >= MaxHistogramBins {
		return Spec{}, fmt.Errorf("%w: ages %v..%v at width %v", ErrTooManyBins, floats.Min(ages), floats.Max(ages), binWidth)
	}
	n := int(span) + 1
	sums := make([]float64, n)
	for i, a := range ages {
		k := int(math.Floor((a - lo) / binWidth))
		k = min(max(k, 0), n-1)
		sums[k] += amounts[i]
	}
	pts := make([]Point, n)
	for k := range sums {
		start := lo + float64(k)*binWidth
		pts[k] = Point{Label: fmt.Sprintf("%s-%s", fmtNum(start), fmtNum(start+binWidth)), Value: sums[k]}
	}
	spec.Series = []Series{{Name: "Loans", Data: pts, Color: defaultColors[0]}}
	return spec, nil
}

func lessValue(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil && fa != fb {
		return fa < fb
	}
	return a < b
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
