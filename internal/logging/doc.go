// Package logging wires log/slog with cardpress conventions: a console
// handler for interactive runs, a JSON handler for machine consumption, and
// standardized field names shared across components.
package logging
