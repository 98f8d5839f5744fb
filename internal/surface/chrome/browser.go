package chrome

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"cardpress/internal/logging"
)

// Options describes the browser session to establish.
type Options struct {
	// URL is the Card Conjurer instance to drive.
	URL string
	// RemoteURL attaches to an already-running Chrome debugger instead of
	// launching a new process.
	RemoteURL    string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	NoSandbox    bool
	// ReadyTimeout bounds the initial wait for the canvas after navigation.
	ReadyTimeout time.Duration
	// ImportWait bounds the wait for the saved-card list after a manifest upload.
	ImportWait time.Duration
}

// Browser drives a Card Conjurer page over the Chrome DevTools Protocol. It
// implements surface.Surface, surface.Switcher, and surface.Loader.
type Browser struct {
	opts   Options
	logger *slog.Logger

	browserCtx context.Context
	cancels    []context.CancelFunc
}

// New constructs an unstarted browser session.
func New(opts Options, logger *slog.Logger) *Browser {
	return &Browser{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "browser"),
	}
}

// Start launches (or attaches to) Chrome, navigates to the configured URL,
// and waits for the main canvas to appear. Failure here is fatal to the run.
func (b *Browser) Start(ctx context.Context) error {
	if b.browserCtx != nil {
		return errors.New("browser already started")
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if b.opts.RemoteURL != "" {
		b.logger.Info("attaching to remote chrome", logging.String("remote_url", b.opts.RemoteURL))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, b.opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", b.opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(b.opts.WindowWidth, b.opts.WindowHeight),
		)
		if b.opts.NoSandbox {
			execOpts = append(execOpts, chromedp.Flag("no-sandbox", true))
		}
		b.logger.Info("launching chrome",
			logging.Bool("headless", b.opts.Headless),
			logging.String("window", strconv.Itoa(b.opts.WindowWidth)+"x"+strconv.Itoa(b.opts.WindowHeight)),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	b.cancels = []context.CancelFunc{browserCancel, allocCancel}
	b.browserCtx = browserCtx

	navCtx, navCancel := context.WithTimeout(browserCtx, b.opts.ReadyTimeout)
	defer navCancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(b.opts.URL),
		chromedp.WaitReady("canvas", chromedp.ByQuery),
	)
	if err != nil {
		b.Close()
		return fmt.Errorf("open %s: %w", b.opts.URL, err)
	}

	b.logger.Info("page ready", logging.String("url", b.opts.URL))
	return nil
}

// Close tears down the browser session. Safe to call more than once.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
	b.browserCtx = nil
}

// run executes chromedp actions against the session, honoring cancellation of
// the caller's context. chromedp actions must run on the browser context, so
// the caller context is only consulted for early exit.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if b.browserCtx == nil {
		return errors.New("browser not started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := b.browserCtx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}
