// Package fingerprint derives cheap content hashes from render snapshots.
//
// Fingerprints exist to answer "did the canvas change?" between samples, so
// they use xxhash rather than a cryptographic digest.
package fingerprint

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies snapshot content. The zero value means "no
// fingerprint" and is never produced by Of.
type Fingerprint string

// None is the absent fingerprint, used as the baseline for a fresh surface.
const None Fingerprint = ""

// Of hashes snapshot bytes into a fingerprint.
func Of(data []byte) Fingerprint {
	return Fingerprint(strconv.FormatUint(xxhash.Sum64(data), 16))
}

// IsNone reports whether the fingerprint is absent.
func (f Fingerprint) IsNone() bool { return f == None }

func (f Fingerprint) String() string {
	if f.IsNone() {
		return "<none>"
	}
	return string(f)
}
