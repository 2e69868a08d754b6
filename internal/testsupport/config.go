package testsupport

import (
	"path/filepath"
	"testing"

	"scenepack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.Paths.ArchiveDir = filepath.Join(base, "archives")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DatabasePath = filepath.Join(base, "scenepack.db")
	cfg.Package.Name = "test-pack"
	cfg.Package.Title = "Test Pack"
	cfg.Package.Author = "Tester"
	cfg.Package.Version = "1.0.0"
	cfg.Origin.BaseURL = "http://localhost:30000"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithPackageName sets the package name on the test config.
func WithPackageName(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Package.Name = name
	}
}

// WithTrustWeb marks external web URLs as trusted (not bundled).
func WithTrustWeb() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Download.TrustWeb = true
	}
}

// WithWorkers sets the download worker count.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Download.Workers = n
	}
}
