// Package runstore persists batch run history in SQLite: one row per run and
// one row per card outcome, consumed by the runs CLI commands.
package runstore
