package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/loanlens-cli/internal/regression"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const loansCSV = "person_age,person_education,loan_amnt\n" +
	"20,Bachelor,5000\n" +
	"25,Master,6000\n" +
	"30,Bachelor,7000\n" +
	"35,High School,8000\n" +
	"40,Master,9000\n"

// resetFlags clears values and Changed state that persist across invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "loan_data.csv")
	if err := os.WriteFile(p, []byte(loansCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCLI_PredictDefaultAge(t *testing.T) {
	p := setup(t)
	out, err := runCmd(t, "predict", p)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !strings.Contains(out, "Predicted loan amount for a 30-year-old applicant: R$7000.00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCLI_PredictUsesConfiguredDataset(t *testing.T) {
	p := setup(t)
	if _, err := runCmd(t, "config", "set", "dataset_path", p); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := runCmd(t, "predict", "--age", "40")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !strings.Contains(out, "R$9000.00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCLI_PredictRejectsAgeOutOfRange(t *testing.T) {
	p := setup(t)
	_, err := runCmd(t, "predict", "--age", "120", p)
	if !errors.Is(err, regression.ErrAgeOutOfRange) {
		t.Fatalf("err = %v, want ErrAgeOutOfRange", err)
	}
}

func TestCLI_PredictRejectsZeroAge(t *testing.T) {
	p := setup(t)
	out, err := runCmd(t, "predict", "--age", "0", p)
	if !errors.Is(err, regression.ErrAgeOutOfRange) {
		t.Fatalf("err = %v, want ErrAgeOutOfRange", err)
	}
	if strings.Contains(out, "Predicted") {
		t.Fatalf("prediction printed for age 0:\n%s", out)
	}
}

func TestCLI_MissingFileReportedOnce(t *testing.T) {
	setup(t)
	missing := filepath.Join(t.TempDir(), "nope.csv")
	out, err := runCmd(t, "dashboard", missing)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	if n := strings.Count(out, "not found"); n != 1 {
		t.Fatalf("not-found reported %d times:\n%s", n, out)
	}
}

func TestCLI_MissingAmountColumn(t *testing.T) {
	setup(t)
	p := filepath.Join(t.TempDir(), "ages.csv")
	if err := os.WriteFile(p, []byte("person_age\n20\n30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd(t, "predict", p)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	if !strings.Contains(out, "loan_amnt") || strings.Contains(out, "Predicted") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCLI_DashboardJSONOutput(t *testing.T) {
	p := setup(t)
	dst := filepath.Join(t.TempDir(), "out", "dash.json")
	if _, err := runCmd(t, "dashboard", p, "--format", "json", "--output", dst, "--age", "25"); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Page struct {
			RunID  string            `json:"run_id"`
			Blocks []json.RawMessage `json:"blocks"`
		} `json:"page"`
		Outcome struct {
			Prediction struct {
				Age    int     `json:"age"`
				Amount float64 `json:"amount"`
			} `json:"prediction"`
		} `json:"outcome"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Page.RunID == "" || len(doc.Page.Blocks) == 0 {
		t.Fatalf("empty page: %+v", doc.Page)
	}
	if doc.Outcome.Prediction.Age != 25 || doc.Outcome.Prediction.Amount < 5999.99 || doc.Outcome.Prediction.Amount > 6000.01 {
		t.Fatalf("prediction = %+v", doc.Outcome.Prediction)
	}
}

func TestCLI_DashboardTextRejectsOutput(t *testing.T) {
	p := setup(t)
	if _, err := runCmd(t, "dashboard", p, "--output", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatal("expected error for --output with text format")
	}
}

func TestCLI_DescribeMarkdown(t *testing.T) {
	p := setup(t)
	dst := filepath.Join(t.TempDir(), "summary.md")
	if _, err := runCmd(t, "describe", p, "--output", dst); err != nil {
		t.Fatalf("describe: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "Rows: 5") {
		t.Fatalf("summary missing row count:\n%s", b)
	}
}

func TestCLI_DescribeTerminal(t *testing.T) {
	p := setup(t)
	out, err := runCmd(t, "describe", p)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	lower := strings.ToLower(out)
	for _, want := range []string{"summary statistics", "data types", "person_education"} {
		if !strings.Contains(lower, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestCLI_TrainJSON(t *testing.T) {
	p := setup(t)
	out, err := runCmd(t, "train", p, "--format", "json")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	var res regression.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.TrainSize != 4 || res.TestSize != 1 || res.Model == nil || res.Model.Slope <= 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestCLI_ChartsPNG(t *testing.T) {
	p := setup(t)
	dir := t.TempDir()
	if _, err := runCmd(t, "charts", p, "--png-dir", dir); err != nil {
		t.Fatalf("charts: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*.png"))
	if len(files) != 3 {
		t.Fatalf("png files = %v", files)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	setup(t)
	if _, err := runCmd(t, "config", "set", "seed", "7"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := runCmd(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "seed: 7") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := runCmd(t, "config", "set", "test_ratio", "1.5"); err == nil {
		t.Fatal("expected validation error for test_ratio 1.5")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestCLI_Version(t *testing.T) {
	setup(t)
	out, err := runCmd(t, "version")
	if err != nil || !strings.HasPrefix(out, "loanlens ") {
		t.Fatalf("version = %q, err=%v", out, err)
	}
}
