package sink

import "context"

// Sink persists final artifacts. Implementations must expose an existence
// check: the orchestrator uses it to enforce no-overwrite semantics unless a
// run is forced.
type Sink interface {
	// Exists reports whether an artifact with this name is already present.
	Exists(ctx context.Context, name string) (bool, error)
	// Store persists the artifact bytes under the given name.
	Store(ctx context.Context, name string, data []byte) error
	// Location describes where artifacts go, for logs and summaries.
	Location() string
}
