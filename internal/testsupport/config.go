package testsupport

import (
	"path/filepath"
	"testing"

	"cardpress/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Browser.Headless = true
	cfgVal.Delays.TabSwitchMs = 0
	cfgVal.Delays.CardLoadMs = 0
	cfgVal.Delays.TransformMs = 0
	cfgVal.Convergence.IntervalMs = 1
	cfgVal.Convergence.TimeoutSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAutoFrame sets the frame transform on the test config.
func WithAutoFrame(value string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transforms.AutoFrame = value
	}
}

// WithStrictChange makes unchanged renders count as failures.
func WithStrictChange() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convergence.StrictChange = true
	}
}

// WithRemoteSink points the sink at an HTTP endpoint instead of output_dir.
func WithRemoteSink(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sink.RemoteURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
