package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/loanlens-cli/internal/utils"
)

func TestEncodeFormats(t *testing.T) {
	v := map[string]float64{"rmse": 1.5}
	j, err := utils.Encode(v, "json")
	if err != nil || !strings.Contains(string(j), `"rmse": 1.5`) {
		t.Fatalf("json = %q, err=%v", j, err)
	}
	y, err := utils.Encode(v, "YAML")
	if err != nil || !strings.Contains(string(y), "rmse: 1.5") {
		t.Fatalf("yaml = %q, err=%v", y, err)
	}
	if _, err := utils.Encode(v, "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWriteOutputCreatesDirs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := utils.WriteOutput(p, []byte("{}")); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "{}" {
		t.Fatalf("read back %q err=%v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}
