// Package surface defines the contracts the export pipeline needs from the
// automated render surface: snapshot capture, view switching, and card
// loading. The chrome subpackage provides the real implementation; tests use
// scripted fakes.
package surface
