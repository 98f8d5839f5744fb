package naming_test

import (
	"testing"

	"cardpress/internal/manifest"
	"cardpress/internal/naming"
)

func TestArtifactNameWithFullMetadata(t *testing.T) {
	meta := manifest.Metadata{Title: "Izzet Boilerworks!!", Set: "2X2", Number: "408"}
	want := "izzet-boilerworks_2x2_408.png"
	for i := 0; i < 3; i++ {
		if got := naming.ArtifactName("k1", meta); got != want {
			t.Fatalf("call %d: ArtifactName = %q, want %q", i, got, want)
		}
	}
}

func TestArtifactNameFallsBackToKey(t *testing.T) {
	got := naming.ArtifactName("Lightning  Bolt", manifest.Metadata{})
	if got != "lightning-bolt.png" {
		t.Fatalf("ArtifactName = %q", got)
	}
}

func TestArtifactNameGeneratedKeyKeepsLeadingSegment(t *testing.T) {
	got := naming.ArtifactName("lightning-bolt_2x2_408", manifest.Metadata{})
	if got != "lightning-bolt.png" {
		t.Fatalf("ArtifactName = %q, want leading segment only", got)
	}
}

func TestArtifactNameSentinelsSuppressSegments(t *testing.T) {
	cases := []manifest.Metadata{
		{Title: "Bolt", Set: "noset", Number: "nonum"},
		{Title: "Bolt", Set: "2X2"},
		{Title: "Bolt", Number: "408"},
		{Title: "Bolt", Set: "NOSET", Number: "408"},
	}
	for i, meta := range cases {
		if got := naming.ArtifactName("k", meta); got != "bolt.png" {
			t.Fatalf("case %d: ArtifactName = %q, want bolt.png", i, got)
		}
	}
}

func TestArtifactNameNoEmptySegmentsOrDoubledDelimiters(t *testing.T) {
	got := naming.ArtifactName("  --  !!??  ", manifest.Metadata{})
	if got != "card.png" {
		t.Fatalf("ArtifactName for unsanitizable key = %q, want card.png", got)
	}

	got = naming.ArtifactName("A - B -- C", manifest.Metadata{})
	if got != "a-b-c.png" {
		t.Fatalf("ArtifactName = %q, want a-b-c.png", got)
	}
}

func TestArtifactNameFoldsDiacritics(t *testing.T) {
	got := naming.ArtifactName("Séance", manifest.Metadata{})
	if got != "seance.png" {
		t.Fatalf("ArtifactName = %q, want seance.png", got)
	}
}
