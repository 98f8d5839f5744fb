package export

import (
	"context"
	"log/slog"

	"cardpress/internal/fingerprint"
	"cardpress/internal/logging"
	"cardpress/internal/manifest"
	"cardpress/internal/surface"
)

// prime warms the renderer before the main loop. The renderer's first load
// after a fresh session produces a structurally different frame, and records
// carrying the quirk marker amplify it, so the pre-phase loads the first
// marked record (and its successor) once, throws the result away, then loads
// card 0 for real and captures its fingerprint.
//
// Every step is best effort: a priming failure downgrades to a warning and
// the main loop processes card 0 from scratch.
func (o *Orchestrator) prime(ctx context.Context, man *manifest.Manifest, log *slog.Logger) (fingerprint.Fingerprint, bool) {
	marked := -1
	for idx, rec := range man.Records {
		if o.deps.Quirk(rec) {
			marked = idx
			break
		}
	}

	if marked >= 0 {
		log.Debug("warming renderer with marked record",
			logging.String(logging.FieldCardKey, man.Records[marked].Key))
		o.warmUp(ctx, man.Records[marked].Key, log)
		if next := marked + 1; next < len(man.Records) {
			o.warmUp(ctx, man.Records[next].Key, log)
		}
	}

	// Reload card 0 so the main loop starts from a settled render.
	first := man.Records[0]
	if err := o.loadCard(ctx, first.Key); err != nil {
		log.Warn("priming load failed, card 0 will be processed normally",
			logging.String(logging.FieldCardKey, first.Key), logging.Error(err))
		return fingerprint.None, false
	}
	for _, warn := range o.deps.Transforms.ApplyAll(ctx, first.Key) {
		log.Warn("transform failed during priming, continuing",
			logging.String("transform", warn.Transform), logging.Error(warn.Err))
	}
	if err := o.deps.Navigator.Navigate(ctx, surface.ViewCapture); err != nil {
		log.Warn("priming navigation failed, card 0 will be processed normally", logging.Error(err))
		return fingerprint.None, false
	}
	fp, err := o.awaitFresh(ctx)
	if err != nil {
		log.Warn("priming capture failed, card 0 will be processed normally", logging.Error(err))
		return fingerprint.None, false
	}
	log.Debug("priming complete", logging.String(logging.FieldFingerprint, fp.String()))
	return fp, true
}

// warmUp loads a card and waits for it to settle without keeping anything.
func (o *Orchestrator) warmUp(ctx context.Context, key string, log *slog.Logger) {
	if err := o.loadCard(ctx, key); err != nil {
		log.Warn("warm-up load failed",
			logging.String(logging.FieldCardKey, key), logging.Error(err))
		return
	}
	if err := o.deps.Navigator.Navigate(ctx, surface.ViewCapture); err != nil {
		log.Warn("warm-up navigation failed", logging.Error(err))
		return
	}
	if _, err := o.awaitFresh(ctx); err != nil {
		log.Warn("warm-up capture failed",
			logging.String(logging.FieldCardKey, key), logging.Error(err))
	}
}
