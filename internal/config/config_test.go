package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Download.Workers != defaultDownloadWorkers {
		t.Fatalf("unexpected workers: %d", cfg.Download.Workers)
	}
	if !filepath.IsAbs(cfg.Paths.WorkspaceDir) {
		t.Fatalf("workspace dir not absolute: %q", cfg.Paths.WorkspaceDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
workspace_dir = "` + filepath.Join(dir, "ws") + `"
archive_dir = "` + filepath.Join(dir, "archives") + `"

[origin]
base_url = "https://vtt.example.com/"

[download]
workers = 4
timeout_seconds = 15

[packs]
allowed_modules = ["shared-art", " "]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Download.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Download.Workers)
	}
	if cfg.Origin.BaseURL != "https://vtt.example.com" {
		t.Fatalf("base url not trimmed: %q", cfg.Origin.BaseURL)
	}
	if len(cfg.Packs.AllowedModules) != 1 || cfg.Packs.AllowedModules[0] != "shared-art" {
		t.Fatalf("allowed modules not normalized: %v", cfg.Packs.AllowedModules)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false")
	}
	if cfg.Download.TimeoutSeconds != defaultDownloadTimeout {
		t.Fatalf("unexpected timeout: %d", cfg.Download.TimeoutSeconds)
	}
}

func TestOriginEnvOverride(t *testing.T) {
	t.Setenv("SCENEPACK_ORIGIN_URL", "https://host.example.com/")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Origin.BaseURL != "https://host.example.com" {
		t.Fatalf("env override not applied: %q", cfg.Origin.BaseURL)
	}
}

func TestValidateRejectsBadOrigin(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Origin.BaseURL = "ftp://files.example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http origin")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if !strings.Contains(SampleConfig(), "[download]") {
		t.Fatal("sample config missing download section")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(raw) != SampleConfig() {
		t.Fatal("written sample differs from embedded sample")
	}
}
