package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"cardpress/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("config file should not exist")
	}
	if cfg.Convergence.SampleCount != 3 {
		t.Fatalf("default sample_count = %d, want 3", cfg.Convergence.SampleCount)
	}
	if cfg.Convergence.IntervalMs != 330 {
		t.Fatalf("default interval_ms = %d, want 330", cfg.Convergence.IntervalMs)
	}
	if cfg.Priming.Marker != "{cardname}" {
		t.Fatalf("default priming marker = %q", cfg.Priming.Marker)
	}
	if !cfg.Browser.Headless {
		t.Fatal("browser should default to headless")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
output_dir = "` + filepath.Join(dir, "cards") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[browser]
url = "http://mtgproxy:4242"
headless = false

[convergence]
sample_count = 5
strict_change = true

[transforms]
auto_frame = "M15"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Browser.URL != "http://mtgproxy:4242" {
		t.Fatalf("browser url = %q", cfg.Browser.URL)
	}
	if cfg.Convergence.SampleCount != 5 || !cfg.Convergence.StrictChange {
		t.Fatalf("convergence not applied: %+v", cfg.Convergence)
	}
	if cfg.Transforms.AutoFrame != "m15" {
		t.Fatalf("auto_frame should be lowercased, got %q", cfg.Transforms.AutoFrame)
	}
}

func TestValidateRejectsBadFrame(t *testing.T) {
	cfg := config.Default()
	cfg.Transforms.AutoFrame = "retro"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown auto_frame")
	}
}

func TestValidateRejectsBadSinkScheme(t *testing.T) {
	cfg := config.Default()
	cfg.Sink.RemoteURL = "ftp://example.com/cards"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for ftp sink")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
