package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cardpress/internal/logging"
	"cardpress/internal/manifest"
)

const sampleManifest = `[
  {"key": "Izzet Boilerworks", "data": {"text": {"title": {"text": "Izzet Boilerworks"}, "rules": {"text": "Enters tapped."}}, "infoSet": "2X2", "infoNumber": "408"}},
  {"key": "Lightning Bolt", "data": {"text": {"title": {"text": "Lightning Bolt"}}, "infoSet": "noset", "infoNumber": "nonum"}},
  {"key": "Nameless", "data": {}}
]`

func TestParseKeepsRecordsInOrder(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleManifest), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"Izzet Boilerworks", "Lightning Bolt", "Nameless"}
	if diff := cmp.Diff(want, m.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSkipsMalformedEntries(t *testing.T) {
	body := `[
		{"key": "Good"},
		"not an object",
		{"nokey": true},
		{"key": ""},
		{"key": "Good"}
	]`
	m, err := manifest.Parse([]byte(body), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Records) != 1 || m.Records[0].Key != "Good" {
		t.Fatalf("records = %v, want only the first Good entry", m.Keys())
	}
}

func TestParseWhollyUnparseableIsFatal(t *testing.T) {
	if _, err := manifest.Parse([]byte("this is not json"), logging.NewNop()); err == nil {
		t.Fatal("expected fatal error for unparseable manifest")
	}
	if _, err := manifest.Parse([]byte(`{"key": "an object, not an array"}`), logging.NewNop()); err == nil {
		t.Fatal("expected fatal error for non-array manifest")
	}
}

func TestMetadataExtraction(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleManifest), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	meta := m.Records[0].Metadata()
	want := manifest.Metadata{
		Title:  "Izzet Boilerworks",
		Set:    "2X2",
		Number: "408",
		Rules:  "Enters tapped.",
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}

	empty := m.Records[2].Metadata()
	if empty.Title != "" || empty.Set != "" {
		t.Fatalf("empty data should produce empty metadata, got %+v", empty)
	}
}

func TestContainsMarker(t *testing.T) {
	body := `[{"key": "Sub", "data": {"text": {"rules": {"text": "When {cardname} enters..."}}}}]`
	m, err := manifest.Parse([]byte(body), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !m.Records[0].ContainsMarker("{cardname}") {
		t.Fatal("marker should be found in the rules text")
	}
	if m.Records[0].ContainsMarker("{flavorname}") {
		t.Fatal("absent marker reported as present")
	}
}

func TestWriteRoundTripsRawPayloads(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleManifest), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.cardconjurer")
	if err := m.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	reparsed, err := manifest.Parse(data, logging.NewNop())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if diff := cmp.Diff(m.Keys(), reparsed.Keys()); diff != "" {
		t.Fatalf("keys changed across write/parse (-want +got):\n%s", diff)
	}

	// Payloads must survive byte-for-byte at the JSON level.
	var origPayload, newPayload any
	if err := json.Unmarshal(m.Records[0].Raw, &origPayload); err != nil {
		t.Fatalf("unmarshal original: %v", err)
	}
	if err := json.Unmarshal(reparsed.Records[0].Raw, &newPayload); err != nil {
		t.Fatalf("unmarshal reparsed: %v", err)
	}
	if diff := cmp.Diff(origPayload, newPayload); diff != "" {
		t.Fatalf("payload changed (-want +got):\n%s", diff)
	}
}
