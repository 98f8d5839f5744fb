package chrome

import (
	"encoding/base64"
	"testing"
)

func TestDecodePNGDataURL(t *testing.T) {
	payload := []byte("\x89PNG\r\n\x1a\nfake image body")
	dataURL := pngDataURLPrefix + base64.StdEncoding.EncodeToString(payload)

	got, err := decodePNGDataURL(dataURL)
	if err != nil {
		t.Fatalf("decodePNGDataURL: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("decoded %q, want %q", got, payload)
	}
}

func TestDecodePNGDataURLRejectsOtherTypes(t *testing.T) {
	if _, err := decodePNGDataURL("data:image/jpeg;base64,abcd"); err == nil {
		t.Fatal("expected error for non-png data URL")
	}
	if _, err := decodePNGDataURL(""); err == nil {
		t.Fatal("expected error for empty data URL")
	}
}

func TestFilterPlaceholders(t *testing.T) {
	in := []string{"None Selected", "Load a saved card", " Izzet Boilerworks ", "", "Lightning Bolt"}
	got := filterPlaceholders(in)
	want := []string{"Izzet Boilerworks", "Lightning Bolt"}
	if len(got) != len(want) {
		t.Fatalf("filtered = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("filtered[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
