package config

const (
	defaultOutputDir = "~/.local/share/cardpress/cards"
	defaultLogDir    = "~/.local/share/cardpress/logs"

	defaultBrowserURL   = "http://localhost:4242"
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
	defaultReadyTimeout = 10

	defaultSampleCount    = 3
	defaultIntervalMs     = 330
	defaultTimeoutSeconds = 15

	defaultTabSwitchMs       = 600
	defaultCardLoadMs        = 200
	defaultTransformMs       = 600
	defaultImportWaitSeconds = 10

	defaultPrimingMarker = "{cardname}"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Browser: Browser{
			URL:          defaultBrowserURL,
			Headless:     true,
			WindowWidth:  defaultWindowWidth,
			WindowHeight: defaultWindowHeight,
			NoSandbox:    true,
			ReadyTimeout: defaultReadyTimeout,
		},
		Convergence: Convergence{
			SampleCount:    defaultSampleCount,
			IntervalMs:     defaultIntervalMs,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Delays: Delays{
			TabSwitchMs:       defaultTabSwitchMs,
			CardLoadMs:        defaultCardLoadMs,
			TransformMs:       defaultTransformMs,
			ImportWaitSeconds: defaultImportWaitSeconds,
		},
		Priming: Priming{
			Enabled: true,
			Marker:  defaultPrimingMarker,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
