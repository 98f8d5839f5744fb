package logging

import (
	"context"
	"log/slog"

	"cardpress/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCardKey is the standardized structured logging key for card identifiers.
	FieldCardKey = "card_key"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for batch run identifiers.
	FieldRunID = "run_id"
	// FieldView is the standardized structured logging key for surface view names.
	FieldView = "view"
	// FieldFingerprint is the standardized structured logging key for snapshot fingerprints.
	FieldFingerprint = "fingerprint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if key, ok := services.CardKeyFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCardKey, key))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
