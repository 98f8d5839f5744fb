package transforms_test

import (
	"context"
	"errors"
	"testing"

	"cardpress/internal/logging"
	"cardpress/internal/surface"
	"cardpress/internal/transforms"
	"cardpress/internal/views"
)

type recordingSwitcher struct {
	calls []surface.ViewID
}

func (r *recordingSwitcher) SwitchTo(_ context.Context, view surface.ViewID) error {
	r.calls = append(r.calls, view)
	return nil
}

func TestApplyAllContinuesPastFailures(t *testing.T) {
	nav := views.New(&recordingSwitcher{}, 0, logging.NewNop())

	var applied []string
	mk := func(name string, err error) transforms.Transform {
		return transforms.Transform{
			Name: name,
			View: surface.ViewCapture,
			Apply: func(_ context.Context, key string) error {
				applied = append(applied, name+":"+key)
				return err
			},
		}
	}

	app := transforms.New(nav, []transforms.Transform{
		mk("frame", nil),
		mk("watermark", errors.New("select missing")),
		mk("symbol", nil),
	}, 0, logging.NewNop())

	warnings := app.ApplyAll(context.Background(), "k1")
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	if warnings[0].Transform != "watermark" || warnings[0].Key != "k1" {
		t.Fatalf("unexpected warning: %+v", warnings[0])
	}
	if len(applied) != 3 {
		t.Fatalf("applied %d transforms, want all 3 despite the failure", len(applied))
	}
}

func TestApplyAllNavigatesToDeclaredView(t *testing.T) {
	sw := &recordingSwitcher{}
	nav := views.New(sw, 0, logging.NewNop())

	app := transforms.New(nav, []transforms.Transform{
		{
			Name:  "frame",
			View:  surface.ViewCapture,
			Apply: func(context.Context, string) error { return nil },
		},
	}, 0, logging.NewNop())

	if warnings := app.ApplyAll(context.Background(), "k1"); len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(sw.calls) != 1 || sw.calls[0] != surface.ViewCapture {
		t.Fatalf("switch calls = %v, want one capture-view switch", sw.calls)
	}
}
