package surface

import (
	"context"
	"errors"
)

// ViewID names one of the mutually exclusive creator tabs. Certain actions
// are only valid while their view is active.
type ViewID string

const (
	// ViewUnknown means the active view cannot be trusted and must be
	// re-established before any view-gated action.
	ViewUnknown ViewID = ""
	// ViewCapture is the frame tab, where the main canvas reflects the loaded card.
	ViewCapture ViewID = "frame"
	// ViewImport is the import/save tab holding the saved-card list.
	ViewImport ViewID = "import"
)

// ErrZeroSurface marks a snapshot of a canvas with zero width or height.
// Callers treat it as a transient sampling error.
var ErrZeroSurface = errors.New("canvas has zero dimensions")

// Surface captures point-in-time snapshots of the render target.
type Surface interface {
	// Snapshot returns the current canvas content as PNG bytes. Zero-size or
	// errored canvases return a distinguishable error.
	Snapshot(ctx context.Context) ([]byte, error)
}

// Switcher performs the raw view transition. Navigation bookkeeping lives in
// the views package; this is only the external action.
type Switcher interface {
	SwitchTo(ctx context.Context, view ViewID) error
}

// Loader triggers loading a saved card by key. Only valid in ViewImport.
type Loader interface {
	LoadCard(ctx context.Context, key string) error
}
