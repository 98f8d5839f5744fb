package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"cardpress/internal/logging"
	"cardpress/internal/surface"
)

// placeholderEntries are option labels the saved-card select uses when no
// card is selected.
var placeholderEntries = map[string]struct{}{
	"":                  {},
	"none selected":     {},
	"load a saved card": {},
}

const actionTimeout = 10 * time.Second

// SwitchTo activates a creator tab by clicking its header.
func (b *Browser) SwitchTo(ctx context.Context, view surface.ViewID) error {
	if view == surface.ViewUnknown {
		return fmt.Errorf("cannot switch to unknown view")
	}
	selector := fmt.Sprintf(`h3[onclick*='toggleCreatorTabs'][onclick*='"%s"']`, string(view))
	b.logger.Debug("switching tab", logging.String(logging.FieldView, string(view)))
	if err := b.run(ctx, actionTimeout, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click tab %s: %w", view, err)
	}
	return nil
}

// LoadCard selects a saved card in the import view and fires the page's load
// path: set the select value, dispatch change, and call the global loadCard
// when present.
func (b *Browser) LoadCard(ctx context.Context, key string) error {
	escaped, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("escape card key: %w", err)
	}
	js := fmt.Sprintf(`(function(name){
		var s = document.getElementById('load-card-options');
		if (!s) { return 'select missing'; }
		s.value = name;
		s.dispatchEvent(new Event('change', {bubbles: true}));
		if (typeof loadCard === 'function') { loadCard(name); }
		return 'ok';
	})(%s)`, escaped)

	var result string
	if err := b.run(ctx, actionTimeout, chromedp.Evaluate(js, &result)); err != nil {
		return fmt.Errorf("load card %q: %w", key, err)
	}
	if result != "ok" {
		return fmt.Errorf("load card %q: %s", key, result)
	}
	b.logger.Debug("card load dispatched", logging.String(logging.FieldCardKey, key))
	return nil
}

// SetAutoFrame sets the frame picker select and dispatches its change event.
func (b *Browser) SetAutoFrame(ctx context.Context, value string) error {
	escaped, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("escape frame value: %w", err)
	}
	js := fmt.Sprintf(`(function(value){
		var s = document.getElementById('autoFrame');
		if (!s) { return 'select missing'; }
		s.value = value;
		s.dispatchEvent(new Event('change', {bubbles: true}));
		return 'ok';
	})(%s)`, escaped)

	var result string
	if err := b.run(ctx, actionTimeout, chromedp.Evaluate(js, &result)); err != nil {
		return fmt.Errorf("set auto frame %q: %w", value, err)
	}
	if result != "ok" {
		return fmt.Errorf("set auto frame %q: %s", value, result)
	}
	return nil
}

// ImportManifest uploads a .cardconjurer file through the import tab's file
// input and waits until the saved-card list is populated.
func (b *Browser) ImportManifest(ctx context.Context, path string) error {
	if err := b.SwitchTo(ctx, surface.ViewImport); err != nil {
		return err
	}

	// The specific input is preferred; Card Conjurer also exposes generic
	// hidden file inputs that accept anything.
	selectors := []string{
		`input#importProject[type='file']`,
		`input[type='file'][accept*='.cardconjurer']`,
		`input[type='file'][oninput*='uploadSavedCards']`,
		`input[type='file']`,
	}
	var uploadErr error
	for _, sel := range selectors {
		uploadErr = b.run(ctx, actionTimeout, chromedp.SetUploadFiles(sel, []string{path}, chromedp.ByQuery))
		if uploadErr == nil {
			b.logger.Debug("manifest sent to file input", logging.String("selector", sel))
			break
		}
	}
	if uploadErr != nil {
		return fmt.Errorf("upload manifest %s: %w", path, uploadErr)
	}

	deadline := time.Now().Add(b.opts.ImportWait)
	for {
		keys, err := b.ListSavedCards(ctx)
		if err == nil && len(keys) > 0 {
			b.logger.Info("manifest imported", logging.Int("cards", len(keys)))
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for cards after importing %s", path)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

// ListSavedCards returns the card keys currently offered by the saved-card
// select, skipping placeholder entries.
func (b *Browser) ListSavedCards(ctx context.Context) ([]string, error) {
	js := `(function(){
		var s = document.getElementById('load-card-options');
		if (!s) { return []; }
		var out = [];
		for (var i = 0; i < s.options.length; i++) {
			out.push(s.options[i].value);
		}
		return out;
	})()`

	var raw []string
	if err := b.run(ctx, actionTimeout, chromedp.Evaluate(js, &raw)); err != nil {
		return nil, fmt.Errorf("list saved cards: %w", err)
	}
	return filterPlaceholders(raw), nil
}

func filterPlaceholders(values []string) []string {
	keys := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if _, skip := placeholderEntries[strings.ToLower(trimmed)]; skip {
			continue
		}
		keys = append(keys, trimmed)
	}
	return keys
}
