// Package views tracks the single active creator tab and performs idempotent
// transitions. The navigator owns the active-view singleton; every view-gated
// action goes through Navigate first.
package views

import (
	"context"
	"log/slog"
	"time"

	"cardpress/internal/logging"
	"cardpress/internal/services"
	"cardpress/internal/surface"
)

// Navigator serializes view transitions against the shared surface.
type Navigator struct {
	switcher surface.Switcher
	settle   time.Duration
	logger   *slog.Logger

	current surface.ViewID
}

// New constructs a navigator. The initial view is unknown, so the first
// Navigate always performs a real switch.
func New(switcher surface.Switcher, settle time.Duration, logger *slog.Logger) *Navigator {
	return &Navigator{
		switcher: switcher,
		settle:   settle,
		logger:   logging.NewComponentLogger(logger, "navigator"),
		current:  surface.ViewUnknown,
	}
}

// Current returns the view the navigator believes is active.
func (n *Navigator) Current() surface.ViewID { return n.current }

// Navigate makes target the active view. It is a no-op when the target is
// already active. On switch failure the tracked view becomes unknown so the
// next call re-attempts instead of trusting stale state.
func (n *Navigator) Navigate(ctx context.Context, target surface.ViewID) error {
	if target == surface.ViewUnknown {
		return services.Wrap(services.ErrValidation, "", "navigate", "target view must be known", nil)
	}
	if n.current == target {
		return nil
	}

	if err := n.switcher.SwitchTo(ctx, target); err != nil {
		n.current = surface.ViewUnknown
		n.logger.Warn("view switch failed, active view now unknown",
			logging.String(logging.FieldView, string(target)),
			logging.Error(err),
		)
		return services.Wrap(services.ErrExternalTool, "", "navigate", "switch to "+string(target), err)
	}

	n.current = target
	if n.settle > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.settle):
		}
	}
	n.logger.Debug("view active", logging.String(logging.FieldView, string(target)))
	return nil
}
