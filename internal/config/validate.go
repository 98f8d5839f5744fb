package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// AutoFrameValues maps the friendly auto-frame names to the values the frame
// picker understands.
var AutoFrameValues = map[string]string{
	"7th":     "Seventh",
	"seventh": "Seventh",
	"8th":     "Eighth",
	"eighth":  "Eighth",
	"m15":     "M15Eighth",
	"ub":      "M15EighthUB",
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateConvergence(); err != nil {
		return err
	}
	if err := c.validateTransforms(); err != nil {
		return err
	}
	if err := c.validateSink(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBrowser() error {
	if _, err := url.ParseRequestURI(c.Browser.URL); err != nil {
		return fmt.Errorf("browser.url %q is not a valid URL: %w", c.Browser.URL, err)
	}
	if c.Browser.RemoteURL != "" {
		if _, err := url.ParseRequestURI(c.Browser.RemoteURL); err != nil {
			return fmt.Errorf("browser.remote_url %q is not a valid URL: %w", c.Browser.RemoteURL, err)
		}
	}
	return nil
}

func (c *Config) validateConvergence() error {
	if c.Convergence.SampleCount < 1 {
		return errors.New("convergence.sample_count must be at least 1")
	}
	if c.Convergence.TimeoutSeconds*1000 <= c.Convergence.IntervalMs {
		return errors.New("convergence.timeout_seconds must exceed the sampling interval")
	}
	return nil
}

func (c *Config) validateTransforms() error {
	frame := strings.TrimSpace(c.Transforms.AutoFrame)
	if frame == "" {
		return nil
	}
	if _, ok := AutoFrameValues[frame]; !ok {
		return fmt.Errorf("transforms.auto_frame %q is not one of 7th, seventh, 8th, eighth, m15, ub", frame)
	}
	return nil
}

func (c *Config) validateSink() error {
	if c.Sink.RemoteURL == "" {
		return nil
	}
	parsed, err := url.ParseRequestURI(c.Sink.RemoteURL)
	if err != nil {
		return fmt.Errorf("sink.remote_url %q is not a valid URL: %w", c.Sink.RemoteURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("sink.remote_url must use http or https, got %q", parsed.Scheme)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
