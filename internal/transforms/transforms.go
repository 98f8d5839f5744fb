// Package transforms applies optional, best-effort per-card adjustments
// before capture. A failing transform is cosmetic damage, never a card
// failure: the applicator records a warning and moves on.
package transforms

import (
	"context"
	"log/slog"
	"time"

	"cardpress/internal/logging"
	"cardpress/internal/surface"
	"cardpress/internal/views"
)

// Transform is one named adjustment action gated on a view.
type Transform struct {
	Name string
	View surface.ViewID
	// Apply performs the adjustment for the current card.
	Apply func(ctx context.Context, key string) error
}

// Warning records a transform that failed for a card.
type Warning struct {
	Key       string
	Transform string
	Err       error
}

// Applicator runs an ordered transform list.
type Applicator struct {
	nav        *views.Navigator
	transforms []Transform
	settle     time.Duration
	logger     *slog.Logger
}

// New constructs an applicator over the given ordered transforms.
func New(nav *views.Navigator, transforms []Transform, settle time.Duration, logger *slog.Logger) *Applicator {
	return &Applicator{
		nav:        nav,
		transforms: transforms,
		settle:     settle,
		logger:     logging.NewComponentLogger(logger, "transforms"),
	}
}

// Len reports the number of configured transforms.
func (a *Applicator) Len() int { return len(a.transforms) }

// ApplyAll runs every transform for the card, collecting at most one warning
// per transform. Navigation failures count as that transform's failure and
// the remaining transforms still run.
func (a *Applicator) ApplyAll(ctx context.Context, key string) []Warning {
	var warnings []Warning
	for _, tr := range a.transforms {
		if err := a.applyOne(ctx, tr, key); err != nil {
			warnings = append(warnings, Warning{Key: key, Transform: tr.Name, Err: err})
			a.logger.Warn("transform failed, continuing",
				logging.String("transform", tr.Name),
				logging.String(logging.FieldCardKey, key),
				logging.Error(err),
			)
		}
	}
	return warnings
}

func (a *Applicator) applyOne(ctx context.Context, tr Transform, key string) error {
	if err := a.nav.Navigate(ctx, tr.View); err != nil {
		return err
	}
	if err := tr.Apply(ctx, key); err != nil {
		return err
	}
	if a.settle > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.settle):
		}
	}
	a.logger.Debug("transform applied",
		logging.String("transform", tr.Name),
		logging.String(logging.FieldCardKey, key),
	)
	return nil
}
