package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cardpress/internal/config"
	"cardpress/internal/converge"
	"cardpress/internal/export"
	"cardpress/internal/logging"
	"cardpress/internal/manifest"
	"cardpress/internal/naming"
	"cardpress/internal/runstore"
	"cardpress/internal/sink"
	"cardpress/internal/surface"
	"cardpress/internal/surface/chrome"
	"cardpress/internal/transforms"
	"cardpress/internal/views"
)

func newExportCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		force    bool
		urlFlag  string
		frame    string
		output   string
		headless bool
		noRecord bool
	)

	cmd := &cobra.Command{
		Use:   "export <manifest>",
		Short: "Export every card in a saved-card manifest as a PNG",
		Long: "Export uploads the manifest to a Card Conjurer instance, loads each " +
			"saved card in turn, waits for the canvas to settle, and writes the " +
			"rendered PNG to the configured sink. Failed cards are collected into " +
			"a retry manifest next to the input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			// Flags override file configuration only when set.
			if cmd.Flags().Changed("url") {
				cfg.Browser.URL = urlFlag
			}
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}
			if cmd.Flags().Changed("frame") {
				cfg.Transforms.AutoFrame = strings.ToLower(strings.TrimSpace(frame))
			}
			if cmd.Flags().Changed("output") {
				expanded, err := config.ExpandPath(output)
				if err != nil {
					return err
				}
				cfg.Paths.OutputDir = expanded
				cfg.Sink.RemoteURL = ""
			}
			if force {
				cfg.Sink.Overwrite = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			return runExport(cmd, cfg, args[0], noRecord)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite artifacts that already exist")
	cmd.Flags().StringVar(&urlFlag, "url", "", "Card Conjurer URL")
	cmd.Flags().StringVar(&frame, "frame", "", "Auto-frame to apply before capture (7th, 8th, m15, ub)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Artifact output directory")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run Chrome headless")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Skip recording the run in the history database")
	return cmd
}

func runExport(cmd *cobra.Command, cfg *config.Config, manifestPath string, noRecord bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "cardpress.log")},
	})
	if err != nil {
		return err
	}

	manifestPath, err = config.ExpandPath(manifestPath)
	if err != nil {
		return err
	}
	man, err := manifest.Load(manifestPath, log)
	if err != nil {
		return err
	}
	log.Info("manifest loaded",
		logging.String("path", manifestPath),
		logging.Int("cards", len(man.Records)))

	lock := export.NewRunLock(cfg.Paths.LogDir)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	var recorder export.Recorder
	var store *runstore.Store
	if !noRecord {
		store, err = runstore.Open(filepath.Join(cfg.Paths.LogDir, "cardpress.db"))
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store
	}

	browser := chrome.New(chrome.Options{
		URL:          cfg.Browser.URL,
		RemoteURL:    cfg.Browser.RemoteURL,
		Headless:     cfg.Browser.Headless,
		WindowWidth:  cfg.Browser.WindowWidth,
		WindowHeight: cfg.Browser.WindowHeight,
		NoSandbox:    cfg.Browser.NoSandbox,
		ReadyTimeout: time.Duration(cfg.Browser.ReadyTimeout) * time.Second,
		ImportWait:   time.Duration(cfg.Delays.ImportWaitSeconds) * time.Second,
	}, log)
	if err := browser.Start(ctx); err != nil {
		return err
	}
	defer browser.Close()

	nav := views.New(browser, time.Duration(cfg.Delays.TabSwitchMs)*time.Millisecond, log)
	if err := importManifest(ctx, browser, nav, man, log); err != nil {
		return err
	}

	detector := converge.New(browser, converge.Policy{
		SampleCount: cfg.Convergence.SampleCount,
		Interval:    time.Duration(cfg.Convergence.IntervalMs) * time.Millisecond,
		Timeout:     time.Duration(cfg.Convergence.TimeoutSeconds) * time.Second,
	}, log)

	applicator := transforms.New(nav, buildTransforms(cfg, browser),
		time.Duration(cfg.Delays.TransformMs)*time.Millisecond, log)

	var dest sink.Sink
	if cfg.Sink.RemoteURL != "" {
		dest = sink.NewRemote(cfg.Sink.RemoteURL, http.DefaultClient)
	} else {
		dest = sink.NewLocal(cfg.Paths.OutputDir)
	}

	orchestrator := export.New(export.Deps{
		Navigator:  nav,
		Loader:     browser,
		Surface:    browser,
		Detector:   detector,
		Transforms: applicator,
		Namer:      naming.ArtifactName,
		Sink:       dest,
		Recorder:   recorder,
		Logger:     log,
	}, export.Config{
		LoadSettle:   time.Duration(cfg.Delays.CardLoadMs) * time.Millisecond,
		Priming:      cfg.Priming.Enabled,
		Marker:       cfg.Priming.Marker,
		StrictChange: cfg.Convergence.StrictChange,
		Overwrite:    cfg.Sink.Overwrite,
	})

	result, err := orchestrator.Run(ctx, man)
	if err != nil {
		return err
	}

	if failed := result.FailedKeys(); len(failed) > 0 {
		retry := manifest.BuildRetry(man, failed, log)
		if retry != nil {
			retryPath := manifest.RetryPath(manifestPath)
			if err := retry.Write(retryPath); err != nil {
				log.Error("failed to write retry manifest", logging.Error(err))
			} else {
				log.Info("retry manifest written",
					logging.String("path", retryPath),
					logging.Int("cards", len(retry.Records)))
			}
		}
	}

	printRunSummary(cmd.OutOrStdout(), result, dest.Location())
	if result.SuccessCount == 0 {
		return fmt.Errorf("no artifacts exported (%d cards failed)", len(result.Failures)+len(result.Unattempted))
	}
	return nil
}

// importManifest uploads the saved-card file to the page and confirms every
// manifest key appears in the page's saved-card list. Missing keys are
// warned about up front rather than failing one by one mid-run.
func importManifest(ctx context.Context, browser *chrome.Browser, nav *views.Navigator, man *manifest.Manifest, log *slog.Logger) error {
	if err := nav.Navigate(ctx, surface.ViewImport); err != nil {
		return err
	}
	if err := browser.ImportManifest(ctx, man.Path); err != nil {
		return err
	}
	saved, err := browser.ListSavedCards(ctx)
	if err != nil {
		return err
	}
	available := make(map[string]struct{}, len(saved))
	for _, key := range saved {
		available[key] = struct{}{}
	}
	missing := 0
	for _, key := range man.Keys() {
		if _, ok := available[key]; !ok {
			missing++
			log.Warn("manifest card not present in saved-card list", logging.String(logging.FieldCardKey, key))
		}
	}
	log.Info("manifest imported",
		logging.Int("saved", len(saved)),
		logging.Int("missing", missing))
	return nil
}

// buildTransforms assembles the optional per-card adjustments from config.
func buildTransforms(cfg *config.Config, browser *chrome.Browser) []transforms.Transform {
	var list []transforms.Transform
	if cfg.Transforms.AutoFrame != "" {
		value := config.AutoFrameValues[cfg.Transforms.AutoFrame]
		list = append(list, transforms.Transform{
			Name: "auto-frame",
			View: surface.ViewCapture,
			Apply: func(ctx context.Context, _ string) error {
				return browser.SetAutoFrame(ctx, value)
			},
		})
	}
	return list
}
