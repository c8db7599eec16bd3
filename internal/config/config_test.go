package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), c); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c := Defaults()
	c.DatasetPath = "/data/loans.csv"
	c.Seed = 7
	c.TestRatio = 0.25
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte("seed: 9\nhttp_addr: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOANLENS_SEED", "11")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Seed != 11 || c.HTTPAddr != ":9000" {
		t.Fatalf("seed=%d addr=%q", c.Seed, c.HTTPAddr)
	}
}

func TestValidate(t *testing.T) {
	bad := []func(*Global){
		func(c *Global) { c.TestRatio = 0 },
		func(c *Global) { c.TestRatio = 1 },
		func(c *Global) { c.HistogramBinWidth = 0 },
		func(c *Global) { c.SampleRows = -1 },
	}
	for i, mutate := range bad {
		c := Defaults()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestServerSettingsFromFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte("data_dir: /srv/loans\ntrust_proxy: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DataDir != "/srv/loans" || !c.TrustProxy || c.HTTPAddr != "127.0.0.1:8080" {
		t.Fatalf("data_dir=%q trust_proxy=%v addr=%q", c.DataDir, c.TrustProxy, c.HTTPAddr)
	}
}
