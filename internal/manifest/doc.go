// Package manifest parses .cardconjurer card lists, extracts per-card
// metadata, and derives retry manifests from failed runs. Raw record payloads
// are preserved byte-for-byte so a retry manifest is a strict subset of its
// input in the input's own schema.
package manifest
