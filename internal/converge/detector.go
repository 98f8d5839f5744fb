package converge

import (
	"context"
	"log/slog"
	"time"

	"cardpress/internal/fingerprint"
	"cardpress/internal/logging"
	"cardpress/internal/services"
	"cardpress/internal/surface"
)

// Policy describes how convergence is detected. Values come from
// configuration, not constants.
type Policy struct {
	// SampleCount is how many consecutive identical fingerprints declare
	// convergence.
	SampleCount int
	// Interval is the inter-sample polling delay.
	Interval time.Duration
	// Timeout bounds the whole wait, including the escape phase.
	Timeout time.Duration
}

// Result reports a completed convergence wait.
type Result struct {
	Fingerprint fingerprint.Fingerprint
	Elapsed     time.Duration
	// Unchanged is set when the render stabilized back to the supplied
	// baseline: the card produced no observable change. Some cards
	// legitimately render identical output, so callers decide whether this
	// is a failure.
	Unchanged bool
}

// Detector polls a surface until its content stops changing.
//
// With a non-empty baseline the detector first waits for the fingerprint to
// move off the baseline (the escape phase) before counting stable samples, so
// it never declares success on a render that has not visibly started.
// Sampling errors, including zero-size canvases, are transient: they are
// skipped without touching the stability counter.
type Detector struct {
	surface surface.Surface
	policy  Policy
	logger  *slog.Logger
}

// New constructs a detector over the given surface.
func New(s surface.Surface, policy Policy, logger *slog.Logger) *Detector {
	return &Detector{
		surface: s,
		policy:  policy,
		logger:  logging.NewComponentLogger(logger, "converge"),
	}
}

// Await blocks until the surface converges or the policy timeout elapses.
// A timeout is reported via services.ErrTimeout.
func (d *Detector) Await(ctx context.Context, baseline fingerprint.Fingerprint) (Result, error) {
	start := time.Now()
	escaped := baseline.IsNone()

	var held fingerprint.Fingerprint
	run := 0

	ticker := time.NewTicker(d.policy.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(d.policy.Timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-deadline.C:
			phase := "stability"
			if !escaped {
				phase = "escape"
			}
			d.logger.Debug("convergence wait expired",
				logging.String("phase", phase),
				logging.Duration("elapsed", time.Since(start)),
			)
			return Result{}, services.Wrap(services.ErrTimeout, "AWAIT_CONVERGENCE", phase,
				"render did not stabilize within "+d.policy.Timeout.String(), nil)
		case <-ticker.C:
		}

		data, err := d.surface.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			// Transient: zero-size canvas or an adapter hiccup mid-render.
			d.logger.Debug("sample skipped", logging.Error(err))
			continue
		}

		fp := fingerprint.Of(data)

		if !escaped {
			if fp == baseline {
				continue
			}
			escaped = true
			d.logger.Debug("escaped baseline",
				logging.String(logging.FieldFingerprint, fp.String()))
		}

		if fp == held {
			run++
		} else {
			held = fp
			run = 1
		}

		if run >= d.policy.SampleCount {
			elapsed := time.Since(start)
			unchanged := !baseline.IsNone() && held == baseline
			d.logger.Debug("converged",
				logging.String(logging.FieldFingerprint, held.String()),
				logging.Duration("elapsed", elapsed),
				logging.Bool("unchanged", unchanged),
			)
			return Result{Fingerprint: held, Elapsed: elapsed, Unchanged: unchanged}, nil
		}
	}
}
