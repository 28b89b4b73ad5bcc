package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerJSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "warn", "json").With("run_id", "r-1")

	log.Info("[test] hidden %d", 1)
	log.Warn("[test] shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"message":"[test] shown 2"`) {
		t.Errorf("missing warn message: %s", out)
	}
	if !strings.Contains(out, `"run_id":"r-1"`) {
		t.Errorf("missing run_id field: %s", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	tests := map[string]string{
		"DEBUG":   "debug",
		" warn ":  "warn",
		"warning": "warn",
		"error":   "error",
		"verbose": "info",
		"":        "info",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s; want %s", in, got, want)
		}
	}
}
