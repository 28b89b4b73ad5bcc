package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListCategoryColumn != "Log Type" {
		t.Errorf("ListCategoryColumn: got %q, want %q", cfg.ListCategoryColumn, "Log Type")
	}
	if cfg.ListPhoneColumn != "Phone" {
		t.Errorf("ListPhoneColumn: got %q, want %q", cfg.ListPhoneColumn, "Phone")
	}
	wantHints := []string{"mobile", "phone", "number", "tel", "contact", "ph"}
	if !reflect.DeepEqual(cfg.PhoneColumnHints, wantHints) {
		t.Errorf("PhoneColumnHints: got %v, want %v", cfg.PhoneColumnHints, wantHints)
	}
	if cfg.CapturePolicy != "row" {
		t.Errorf("CapturePolicy: got %q, want %q", cfg.CapturePolicy, "row")
	}
	if !cfg.DropDuplicates || !cfg.ZipOutput {
		t.Error("DropDuplicates and ZipOutput should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PHONE_COLUMN_HINTS", " Cell , ,Phone")
	t.Setenv("MAX_CONCURRENCY", "8")
	t.Setenv("NUMERIC_TEXT_ALL", "true")
	t.Setenv("CAPTURE_POLICY", "COLUMN")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()

	if want := []string{"cell", "phone"}; !reflect.DeepEqual(cfg.PhoneColumnHints, want) {
		t.Errorf("PhoneColumnHints: got %v, want %v", cfg.PhoneColumnHints, want)
	}
	if cfg.MaxConcurrency != 8 {
		t.Errorf("MaxConcurrency: got %d, want 8", cfg.MaxConcurrency)
	}
	if !cfg.NumericTextAll {
		t.Error("NumericTextAll should be true")
	}
	if cfg.CapturePolicy != "column" {
		t.Errorf("CapturePolicy: got %q, want %q", cfg.CapturePolicy, "column")
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries should fall back to 3 on bad input, got %d", cfg.MaxRetries)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty phone column", func(c *Config) { c.ListPhoneColumn = " " }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }},
		{"unknown policy", func(c *Config) { c.CapturePolicy = "cell" }},
		{"no encodings", func(c *Config) { c.CSVEncodings = nil }},
	}

	for _, tt := range tests {
		cfg := Load()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "audit", PostgresSSLMode: "require",
	}
	want := "host=db port=5433 user=u password=p dbname=audit sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
