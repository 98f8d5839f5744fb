// Package naming maps card keys and metadata to deterministic artifact
// filenames. Everything here is pure: same inputs, same name, no side
// effects.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cardpress/internal/manifest"
)

// Extension is the fixed artifact extension; canvas captures are always PNG.
const Extension = ".png"

const fallbackName = "card"

var lowercaser = cases.Lower(language.Und)

// foldDiacritics strips combining marks so "Séance" becomes "Seance" before
// the ASCII filter, rather than losing the letter entirely.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ArtifactName derives the output filename for a card. The title comes from
// metadata when present, otherwise from the key; keys that already look like
// generated names (they contain segment delimiters) contribute only their
// leading segment. Set and collector-number segments are appended only when
// both are present and neither is a sentinel default.
func ArtifactName(key string, meta manifest.Metadata) string {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = titleFromKey(key)
	}

	name := sanitize(title)
	if name == "" {
		name = fallbackName
	}

	set := sanitize(meta.Set)
	number := sanitize(meta.Number)
	if set != "" && set != manifest.NoSet && number != "" && number != manifest.NoNumber {
		name = name + "_" + set + "_" + number
	}

	return name + Extension
}

func titleFromKey(key string) string {
	key = strings.TrimSpace(key)
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i]
	}
	return key
}

// sanitize lowercases, folds diacritics, drops characters outside
// [a-z0-9 -], and collapses whitespace runs and repeated hyphens into single
// hyphens.
func sanitize(value string) string {
	folded, _, err := transform.String(foldDiacritics, value)
	if err != nil {
		folded = value
	}
	lowered := lowercaser.String(folded)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '-':
			b.WriteByte('-')
		}
	}

	collapsed := strings.Trim(b.String(), "-")
	for strings.Contains(collapsed, "--") {
		collapsed = strings.ReplaceAll(collapsed, "--", "-")
	}
	return collapsed
}
