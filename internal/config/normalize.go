package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBrowser()
	c.normalizeConvergence()
	c.normalizeDelays()
	c.normalizePriming()
	c.normalizeLogging()
	c.Transforms.AutoFrame = strings.ToLower(strings.TrimSpace(c.Transforms.AutoFrame))
	c.Sink.RemoteURL = strings.TrimRight(strings.TrimSpace(c.Sink.RemoteURL), "/")
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBrowser() {
	c.Browser.URL = strings.TrimSpace(c.Browser.URL)
	if c.Browser.URL == "" {
		c.Browser.URL = defaultBrowserURL
	}
	c.Browser.RemoteURL = strings.TrimSpace(c.Browser.RemoteURL)
	if c.Browser.WindowWidth <= 0 {
		c.Browser.WindowWidth = defaultWindowWidth
	}
	if c.Browser.WindowHeight <= 0 {
		c.Browser.WindowHeight = defaultWindowHeight
	}
	if c.Browser.ReadyTimeout <= 0 {
		c.Browser.ReadyTimeout = defaultReadyTimeout
	}
}

func (c *Config) normalizeConvergence() {
	if c.Convergence.SampleCount <= 0 {
		c.Convergence.SampleCount = defaultSampleCount
	}
	if c.Convergence.IntervalMs <= 0 {
		c.Convergence.IntervalMs = defaultIntervalMs
	}
	if c.Convergence.TimeoutSeconds <= 0 {
		c.Convergence.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeDelays() {
	if c.Delays.TabSwitchMs < 0 {
		c.Delays.TabSwitchMs = defaultTabSwitchMs
	}
	if c.Delays.CardLoadMs < 0 {
		c.Delays.CardLoadMs = defaultCardLoadMs
	}
	if c.Delays.TransformMs < 0 {
		c.Delays.TransformMs = defaultTransformMs
	}
	if c.Delays.ImportWaitSeconds <= 0 {
		c.Delays.ImportWaitSeconds = defaultImportWaitSeconds
	}
}

func (c *Config) normalizePriming() {
	c.Priming.Marker = strings.TrimSpace(c.Priming.Marker)
	if c.Priming.Marker == "" {
		c.Priming.Marker = defaultPrimingMarker
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
