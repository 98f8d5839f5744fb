// Package export drives the batch pipeline: for each manifest record it
// loads the card, applies view transforms, waits for the render surface to
// converge, snapshots the canvas, and stores the artifact. Cards are
// isolated from one another; a failure is recorded and the loop moves on.
package export
