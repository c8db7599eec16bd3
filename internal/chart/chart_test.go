package chart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/loanlens-cli/internal/dataset"
	"github.com/google/go-cmp/cmp"
)

func readDS(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(csv), ',')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return ds
}

const loans = "person_age,person_education,loan_amnt\n" +
	"22,Master,35000\n" +
	"21,High School,1000\n" +
	"25,High School,5500\n" +
	"23,Bachelor,35000\n" +
	"40,Master,1000\n" +
	"70,Bachelor,2000\n" +
	"120,Master,9999\n" +
	"17,Master,9999\n"

func TestBucketize(t *testing.T) {
	cases := []struct {
		age  float64
		want string
		ok   bool
	}{
		{18, "18-25", true},
		{24.9, "18-25", true},
		{25, "26-35", true},
		{34, "26-35", true},
		{35, "36-50", true},
		{50, "51-65", true},
		{64, "51-65", true},
		{65, "65+", true},
		{99, "65+", true},
		{100, "", false},
		{17, "", false},
	}
	for _, tc := range cases {
		got, ok := Bucketize(tc.age)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Bucketize(%v) = %q,%v want %q,%v", tc.age, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAgeBucketsIsAProjection(t *testing.T) {
	ds := readDS(t, loans)
	before := ds.Columns()
	b, err := AgeBuckets(ds)
	if err != nil {
		t.Fatalf("AgeBuckets: %v", err)
	}
	want := []string{"18-25", "18-25", "26-35", "18-25", "36-50", "65+", "", ""}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Fatalf("buckets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, ds.Columns()); diff != "" {
		t.Fatalf("dataset columns changed:\n%s", diff)
	}
}

func TestBuildAllCharts(t *testing.T) {
	specs, err := Build(readDS(t, loans), DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	want := []string{NameAmountDistribution, NameAmountByAgeEdu, NameAmountByAge}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("chart names (-want +got):\n%s", diff)
	}
}

func TestAmountDistributionOrder(t *testing.T) {
	s, err := AmountDistribution(readDS(t, loans))
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{
		{Label: "1000", Value: 2},
		{Label: "9999", Value: 2},
		{Label: "35000", Value: 2},
		{Label: "2000", Value: 1},
		{Label: "5500", Value: 1},
	}
	if diff := cmp.Diff(want, s.Series[0].Data); diff != "" {
		t.Fatalf("distribution (-want +got):\n%s", diff)
	}
}

func TestAmountByAgeAndEducation(t *testing.T) {
	s, err := AmountByAgeAndEducation(readDS(t, loans))
	if err != nil {
		t.Fatal(err)
	}
	if s.ChartType != TypeGroupedBar || !s.ShowLegend {
		t.Fatalf("unexpected spec header: %#v", s)
	}
	got := map[string][]float64{}
	for _, ser := range s.Series {
		var vals []float64
		for _, p := range ser.Data {
			vals = append(vals, p.Value)
		}
		got[ser.Name] = vals
	}
	want := map[string][]float64{
		"Bachelor":    {35000, 0, 0, 0, 2000},
		"High School": {1000, 5500, 0, 0, 0},
		"Master":      {35000, 0, 1000, 0, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sums (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(AgeBucketLabels, s.Labels()); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
}

func TestAmountByAgeHistogram(t *testing.T) {
	ds := readDS(t, "person_age,loan_amnt\n21,100\n24,50\n25,10\n33,5\n")
	s, err := AmountByAge(ds, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{
		{Label: "20-25", Value: 150},
		{Label: "25-30", Value: 10},
		{Label: "30-35", Value: 5},
	}
	if diff := cmp.Diff(want, s.Series[0].Data); diff != "" {
		t.Fatalf("histogram (-want +got):\n%s", diff)
	}
}

func TestBuildSkipsChartsWithMissingColumns(t *testing.T) {
	cases := []struct {
		name string
		csv  string
		want []string
	}{
		{"amount only", "loan_amnt\n100\n", []string{NameAmountDistribution}},
		{"no education", "person_age,loan_amnt\n30,100\n", []string{NameAmountDistribution, NameAmountByAge}},
		{"no amount", "person_age,person_education\n30,Master\n", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			specs, err := Build(readDS(t, tc.csv), DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, s := range specs {
				got = append(got, s.Name)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("names (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildEmptyDataset(t *testing.T) {
	specs, err := Build(dataset.Empty(), DefaultOptions())
	if err != nil || len(specs) != 0 {
		t.Fatalf("specs=%v err=%v", specs, err)
	}
}

func TestRenderAllWritesPNGs(t *testing.T) {
	specs, err := Build(readDS(t, loans), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	paths, err := RenderAll(specs, dir)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Fatalf("missing png %s: %v", p, err)
		}
		if filepath.Ext(p) != ".png" {
			t.Fatalf("unexpected extension: %s", p)
		}
	}
}

func TestAmountDistributionMergesNumericSpellings(t *testing.T) {
	s, err := AmountDistribution(readDS(t, "loan_amnt\n5000\n5000.0\n5e3\n700\nNaN\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{Label: "5000", Value: 3}, {Label: "700", Value: 1}}
	if diff := cmp.Diff(want, s.Series[0].Data); diff != "" {
		t.Fatalf("distribution (-want +got):\n%s", diff)
	}
}

func TestBuildRejectsNonFiniteAges(t *testing.T) {
	for _, age := range []string{"NaN", "Inf", "-Inf"} {
		ds := readDS(t, "person_age,loan_amnt\n30,1000\n"+age+",2000\n40,3000\n")
		if _, err := Build(ds, DefaultOptions()); !errors.Is(err, dataset.ErrNotNumeric) {
			t.Errorf("age %s: err = %v, want ErrNotNumeric", age, err)
		}
	}
}

func TestAmountByAgeRejectsHugeRange(t *testing.T) {
	ds := readDS(t, "person_age,loan_amnt\n30,1000\n1e18,2000\n")
	if _, err := AmountByAge(ds, 5); !errors.Is(err, ErrTooManyBins) {
		t.Fatalf("err = %v, want ErrTooManyBins", err)
	}
}
