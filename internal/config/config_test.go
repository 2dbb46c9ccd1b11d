package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaokeforge/internal/config"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if path != missing {
		t.Fatalf("expected resolved path %s, got %s", missing, path)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg default: %q", cfg.Tools.FFmpeg)
	}
	if cfg.Transcription.VolumeGateDB != -45.0 {
		t.Fatalf("unexpected volume gate default: %g", cfg.Transcription.VolumeGateDB)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`library_dir = "` + dir + `"`,
		`log_dir = "` + dir + `"`,
		"[transcription]",
		"max_line_chars = 42",
		"[dereverb]",
		`backend = "onnx"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Transcription.MaxLineChars != 42 {
		t.Fatalf("override not applied: %d", cfg.Transcription.MaxLineChars)
	}
	if cfg.Dereverb.Backend != "onnx" {
		t.Fatalf("override not applied: %q", cfg.Dereverb.Backend)
	}
	// Untouched sections keep defaults.
	if cfg.Separation.GainReductionDB != 2.0 {
		t.Fatalf("default lost: %g", cfg.Separation.GainReductionDB)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"positive volume gate", func(c *config.Config) { c.Transcription.VolumeGateDB = 3 }},
		{"unknown dereverb backend", func(c *config.Config) { c.Dereverb.Backend = "metal" }},
		{"unknown log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"tiny max line chars", func(c *config.Config) { c.Transcription.MaxLineChars = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Format = "console"
			cfg.Logging.Level = "info"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSampleConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing file")
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
