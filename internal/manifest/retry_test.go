package manifest_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cardpress/internal/logging"
	"cardpress/internal/manifest"
)

func TestBuildRetryFiltersToFailedKeys(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleManifest), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	retry := manifest.BuildRetry(m, []string{"Lightning Bolt", "Lightning Bolt"}, logging.NewNop())
	if retry == nil {
		t.Fatal("expected a retry manifest")
	}
	if diff := cmp.Diff([]string{"Lightning Bolt"}, retry.Keys()); diff != "" {
		t.Fatalf("retry keys (-want +got):\n%s", diff)
	}
	if string(retry.Records[0].Raw) != string(m.Records[1].Raw) {
		t.Fatal("retry record payload must be the original bytes, unchanged")
	}
}

func TestBuildRetryEmptySetReturnsNil(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleManifest), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if retry := manifest.BuildRetry(m, nil, logging.NewNop()); retry != nil {
		t.Fatalf("retry = %v, want nil for no failures", retry.Keys())
	}
}

func TestBuildRetryUnmatchedKeysAreNotFatal(t *testing.T) {
	m, err := manifest.Parse([]byte(sampleManifest), logging.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	retry := manifest.BuildRetry(m, []string{"Ghost Card", "Nameless"}, logging.NewNop())
	if retry == nil || len(retry.Records) != 1 || retry.Records[0].Key != "Nameless" {
		t.Fatalf("retry should contain exactly the matched record, got %v", retry)
	}
}

func TestRetryPath(t *testing.T) {
	got := manifest.RetryPath("/deck/cube.cardconjurer")
	want := "/deck/cube_failed.cardconjurer"
	if got != want {
		t.Fatalf("RetryPath = %q, want %q", got, want)
	}
	if got := manifest.RetryPath("cards"); got != "cards_failed" {
		t.Fatalf("RetryPath without extension = %q", got)
	}
}
