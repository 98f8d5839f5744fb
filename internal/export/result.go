package export

import "cardpress/internal/runstore"

// Stage names the step of the per-card pipeline a failure occurred in.
type Stage string

const (
	StageLoad              Stage = "LOAD"
	StageTransform         Stage = "TRANSFORM"
	StageEnsureCaptureView Stage = "ENSURE_CAPTURE_VIEW"
	StageAwaitConvergence  Stage = "AWAIT_CONVERGENCE"
	StageSnapshot          Stage = "SNAPSHOT"
	StageEmit              Stage = "EMIT"
)

// FailureRecord captures one card's failure with the stage that caused it.
type FailureRecord struct {
	Key     string
	Stage   Stage
	Message string
}

// BatchRunResult summarizes a whole run.
type BatchRunResult struct {
	RunID        string
	SuccessCount int
	Failures     []FailureRecord
	// Unattempted lists cards skipped because the run was cancelled between
	// items. They belong in the retry set even though no stage failed.
	Unattempted []string
	// Outcomes holds one row per processed card, in manifest order.
	Outcomes []runstore.CardResult
}

// FailedKeys returns the deduplicated keys that need a retry: every card
// that failed plus every card the run never reached.
func (r *BatchRunResult) FailedKeys() []string {
	seen := make(map[string]struct{}, len(r.Failures)+len(r.Unattempted))
	keys := make([]string, 0, len(r.Failures)+len(r.Unattempted))
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for _, f := range r.Failures {
		add(f.Key)
	}
	for _, key := range r.Unattempted {
		add(key)
	}
	return keys
}
