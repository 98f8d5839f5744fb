package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cardpress/internal/converge"
	"cardpress/internal/fingerprint"
	"cardpress/internal/logging"
	"cardpress/internal/manifest"
	"cardpress/internal/runstore"
	"cardpress/internal/services"
	"cardpress/internal/sink"
	"cardpress/internal/surface"
	"cardpress/internal/transforms"
	"cardpress/internal/views"
)

// Detector waits for the render surface to settle on a fingerprint that
// differs from the supplied baseline.
type Detector interface {
	Await(ctx context.Context, baseline fingerprint.Fingerprint) (converge.Result, error)
}

// Recorder persists run and per-card outcomes. *runstore.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, id, manifestPath string) error
	RecordCard(ctx context.Context, result runstore.CardResult) error
	FinishRun(ctx context.Context, id string, successCount, failureCount int) error
}

// Deps gathers the collaborators an Orchestrator drives. Recorder and Quirk
// are optional; everything else must be set.
type Deps struct {
	Navigator  *views.Navigator
	Loader     surface.Loader
	Surface    surface.Surface
	Detector   Detector
	Transforms *transforms.Applicator
	Namer      func(key string, meta manifest.Metadata) string
	Sink       sink.Sink
	Recorder   Recorder
	// Quirk reports whether a record triggers the renderer's first-load
	// quirk. When nil, a content-marker predicate built from Config.Marker
	// is used.
	Quirk  func(manifest.Record) bool
	Logger *slog.Logger
}

// Config holds the orchestrator's tunables.
type Config struct {
	// LoadSettle is slept after each LoadCard before sampling begins.
	LoadSettle time.Duration
	// Priming enables the warm-up pre-phase before the main loop.
	Priming bool
	// Marker is the metadata substring that flags quirk-prone records.
	Marker string
	// StrictChange upgrades an unchanged-from-baseline outcome from a
	// warning to a card failure.
	StrictChange bool
	// Overwrite stores artifacts even when the sink already has them.
	Overwrite bool
}

// Orchestrator runs the batch export loop: one card at a time, each card
// isolated so a failure never stops the run.
type Orchestrator struct {
	deps Deps
	cfg  Config
	log  *slog.Logger
}

func New(deps Deps, cfg Config) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = logging.NewNop()
	}
	if deps.Quirk == nil {
		marker := cfg.Marker
		deps.Quirk = func(rec manifest.Record) bool {
			return marker != "" && rec.ContainsMarker(marker)
		}
	}
	return &Orchestrator{deps: deps, cfg: cfg, log: log}
}

// Run processes every record in the manifest and returns the batch result.
// The returned error is non-nil only for run-level problems (an empty
// manifest or a recorder failure); per-card failures land in the result.
func (o *Orchestrator) Run(ctx context.Context, man *manifest.Manifest) (*BatchRunResult, error) {
	if man == nil || len(man.Records) == 0 {
		return nil, services.Wrap(services.ErrValidation, "export", "run", "manifest has no records", nil)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	log := o.log.With(logging.String(logging.FieldRunID, runID))

	if o.deps.Recorder != nil {
		if err := o.deps.Recorder.BeginRun(ctx, runID, man.Path); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "export", "run", "begin run record", err)
		}
	}

	result := &BatchRunResult{RunID: runID}
	baseline := fingerprint.None

	primedFP, primed := fingerprint.None, false
	if o.cfg.Priming {
		primedFP, primed = o.prime(ctx, man, log)
	}

	for idx, rec := range man.Records {
		if err := ctx.Err(); err != nil {
			for _, rest := range man.Records[idx:] {
				result.Unattempted = append(result.Unattempted, rest.Key)
			}
			log.Warn("run cancelled, remaining cards left unattempted",
				logging.Int("remaining", len(man.Records)-idx))
			break
		}

		itemBaseline := baseline
		var preFP *fingerprint.Fingerprint
		if idx == 0 && primed {
			preFP = &primedFP
		}

		outcome := o.processCard(ctx, rec, itemBaseline, preFP, log)
		outcome.RunID = runID
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Status == runstore.StatusSuccess {
			result.SuccessCount++
		} else {
			result.Failures = append(result.Failures, FailureRecord{
				Key:     rec.Key,
				Stage:   Stage(outcome.Stage),
				Message: outcome.Message,
			})
		}
		// The baseline only advances past fingerprints that actually
		// converged; failures before convergence keep the last good one.
		if fp := fingerprint.Fingerprint(outcome.Fingerprint); !fp.IsNone() {
			baseline = fp
		}

		if o.deps.Recorder != nil {
			if err := o.deps.Recorder.RecordCard(ctx, outcome); err != nil {
				log.Error("failed to record card outcome",
					logging.String(logging.FieldCardKey, rec.Key), logging.Error(err))
			}
		}
	}

	if o.deps.Recorder != nil {
		failureCount := len(result.Failures) + len(result.Unattempted)
		if err := o.deps.Recorder.FinishRun(ctx, runID, result.SuccessCount, failureCount); err != nil {
			log.Error("failed to finish run record", logging.Error(err))
		}
	}
	return result, nil
}

// processCard drives one card through the pipeline. preFP, when non-nil,
// carries the fingerprint from the priming pre-phase: LOAD, TRANSFORM and
// AWAIT_CONVERGENCE are skipped because priming already performed them.
func (o *Orchestrator) processCard(ctx context.Context, rec manifest.Record, baseline fingerprint.Fingerprint, preFP *fingerprint.Fingerprint, log *slog.Logger) runstore.CardResult {
	started := time.Now()
	ctx = services.WithCardKey(ctx, rec.Key)
	log = log.With(logging.String(logging.FieldCardKey, rec.Key))

	out := runstore.CardResult{Key: rec.Key, Status: runstore.StatusFailed}
	fail := func(stage Stage, err error) runstore.CardResult {
		out.Stage = string(stage)
		out.Message = err.Error()
		out.Elapsed = time.Since(started)
		log.Error("card failed", logging.String(logging.FieldStage, string(stage)), logging.Error(err))
		return out
	}

	var converged fingerprint.Fingerprint
	if preFP != nil {
		converged = *preFP
		log.Debug("reusing primed fingerprint",
			logging.String(logging.FieldFingerprint, converged.String()))
	} else {
		if err := o.loadCard(ctx, rec.Key); err != nil {
			return fail(StageLoad, err)
		}

		for _, warn := range o.deps.Transforms.ApplyAll(ctx, rec.Key) {
			log.Warn("transform failed, continuing",
				logging.String("transform", warn.Transform), logging.Error(warn.Err))
		}

		if err := o.deps.Navigator.Navigate(ctx, surface.ViewCapture); err != nil {
			return fail(StageEnsureCaptureView, err)
		}

		res, err := o.deps.Detector.Await(ctx, baseline)
		if err != nil {
			return fail(StageAwaitConvergence, err)
		}
		if res.Unchanged {
			if o.cfg.StrictChange {
				return fail(StageAwaitConvergence, fmt.Errorf("render did not change from previous card"))
			}
			log.Warn("render unchanged from previous card, capturing anyway")
		}
		converged = res.Fingerprint
	}
	out.Fingerprint = converged.String()

	if err := o.deps.Navigator.Navigate(ctx, surface.ViewCapture); err != nil {
		return fail(StageEnsureCaptureView, err)
	}
	data, err := o.deps.Surface.Snapshot(ctx)
	if err != nil {
		return fail(StageSnapshot, err)
	}

	meta := rec.Metadata()
	name := o.deps.Namer(rec.Key, meta)
	exists, err := o.deps.Sink.Exists(ctx, name)
	if err != nil {
		log.Warn("existence check failed, assuming absent", logging.Error(err))
		exists = false
	}
	if exists && !o.cfg.Overwrite {
		return fail(StageEmit, fmt.Errorf("artifact %q already exists", name))
	}
	if err := o.deps.Sink.Store(ctx, name, data); err != nil {
		return fail(StageEmit, err)
	}

	out.Status = runstore.StatusSuccess
	out.Stage = string(StageEmit)
	out.Artifact = name
	out.Elapsed = time.Since(started)
	log.Info("card exported",
		logging.String("artifact", name),
		logging.Duration("elapsed", out.Elapsed))
	return out
}

// loadCard switches to the import view, selects the card, and waits for the
// configured settle delay.
func (o *Orchestrator) loadCard(ctx context.Context, key string) error {
	if err := o.deps.Navigator.Navigate(ctx, surface.ViewImport); err != nil {
		return err
	}
	if err := o.deps.Loader.LoadCard(ctx, key); err != nil {
		return err
	}
	if o.cfg.LoadSettle > 0 {
		select {
		case <-time.After(o.cfg.LoadSettle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// awaitFresh converges from an empty baseline, used by the priming phase
// where no previous fingerprint exists.
func (o *Orchestrator) awaitFresh(ctx context.Context) (fingerprint.Fingerprint, error) {
	res, err := o.deps.Detector.Await(ctx, fingerprint.None)
	if err != nil {
		return fingerprint.None, err
	}
	return res.Fingerprint, nil
}
