package runstore

import "time"

// Status is the lifecycle of a card within a run.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Run is one batch export run.
type Run struct {
	ID           string
	ManifestPath string
	StartedAt    time.Time
	FinishedAt   *time.Time
	SuccessCount int
	FailureCount int
}

// CardResult is the persisted outcome of one card within a run.
type CardResult struct {
	RunID    string
	Key      string
	Status      Status
	Stage       string
	Message     string
	Artifact    string
	Fingerprint string
	Elapsed     time.Duration
}
