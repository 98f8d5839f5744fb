package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Browser contains configuration for the Card Conjurer browser session.
type Browser struct {
	URL          string `toml:"url"`
	Headless     bool   `toml:"headless"`
	RemoteURL    string `toml:"remote_url"`
	WindowWidth  int    `toml:"window_width"`
	WindowHeight int    `toml:"window_height"`
	NoSandbox    bool   `toml:"no_sandbox"`
	// ReadyTimeout bounds the initial wait for the canvas to appear, in seconds.
	ReadyTimeout int `toml:"ready_timeout"`
}

// Convergence contains the render-stability detection policy.
type Convergence struct {
	// SampleCount is how many consecutive identical samples declare convergence.
	SampleCount int `toml:"sample_count"`
	// IntervalMs is the inter-sample polling interval in milliseconds.
	IntervalMs int `toml:"interval_ms"`
	// TimeoutSeconds bounds a single convergence wait.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// StrictChange fails an item whose render stabilizes back to the previous
	// item's fingerprint instead of only warning about it.
	StrictChange bool `toml:"strict_change"`
}

// Delays contains the fixed settle delays after surface mutations, in milliseconds.
type Delays struct {
	TabSwitchMs int `toml:"tab_switch_ms"`
	CardLoadMs  int `toml:"card_load_ms"`
	TransformMs int `toml:"transform_ms"`
	// ImportWaitSeconds bounds the wait for the saved-card list after manifest upload.
	ImportWaitSeconds int `toml:"import_wait_seconds"`
}

// Priming contains the first-render warm-up pre-phase settings.
type Priming struct {
	Enabled bool `toml:"enabled"`
	// Marker is the dynamic text substitution token whose presence makes a
	// card render one pass behind.
	Marker string `toml:"marker"`
}

// Transforms contains optional per-card adjustments applied before capture.
type Transforms struct {
	// AutoFrame selects the frame picker value: 7th, 8th, m15, or ub. Empty disables it.
	AutoFrame string `toml:"auto_frame"`
}

// Sink contains artifact destination settings.
type Sink struct {
	// RemoteURL, when set, uploads artifacts via HTTP PUT under this base URL
	// instead of writing them to output_dir.
	RemoteURL string `toml:"remote_url"`
	// Overwrite replaces existing artifacts instead of failing the item.
	Overwrite bool `toml:"overwrite"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cardpress.
//
// Sections by subsystem:
//   - Paths: artifact and log directories
//   - Browser: Chrome session and Card Conjurer URL
//   - Convergence: render-stability polling policy
//   - Delays: fixed settle delays after navigation/load/transform
//   - Priming: first-render warm-up pre-phase
//   - Transforms: optional per-card adjustments
//   - Sink: artifact destination and overwrite policy
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Browser     Browser     `toml:"browser"`
	Convergence Convergence `toml:"convergence"`
	Delays      Delays      `toml:"delays"`
	Priming     Priming     `toml:"priming"`
	Transforms  Transforms  `toml:"transforms"`
	Sink        Sink        `toml:"sink"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/cardpress/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The bool reports
// whether a file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cardpress.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ to the current user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
