package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_HasComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	New("dashboard").Info("render pass")

	out := buf.String()
	if !strings.Contains(out, "component=dashboard") || !strings.Contains(out, "render pass") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	New("server").Info("listening")

	out := buf.String()
	if !strings.Contains(out, `"level":"INFO"`) || !strings.Contains(out, `"component":"server"`) {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestParseLevelGating(t *testing.T) {
	var buf bytes.Buffer
	Init(ParseLevel("WARN"), "text", &buf)

	logger := New("gate")
	logger.Info("should be suppressed")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be suppressed") || !strings.Contains(out, "should appear") {
		t.Errorf("level gating failed: %s", out)
	}
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Error("unknown level should default to info")
	}
}
