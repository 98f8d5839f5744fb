package chrome

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"cardpress/internal/logging"
	"cardpress/internal/surface"
)

const pngDataURLPrefix = "data:image/png;base64,"

// smallArtifactBytes is the size under which a capture is probably blank.
const smallArtifactBytes = 1024

type captureResult struct {
	Error string `json:"error,omitempty"`
	Zero  bool   `json:"zero,omitempty"`
	Data  string `json:"data,omitempty"`
}

// Snapshot captures the main canvas as PNG bytes via toDataURL. Zero-size
// canvases return surface.ErrZeroSurface so callers can treat the sample as
// transient.
func (b *Browser) Snapshot(ctx context.Context) ([]byte, error) {
	js := `(function(){
		var selectors = ['#mainCanvas', '#canvas', 'canvas'];
		var canvas = null;
		for (var i = 0; i < selectors.length; i++) {
			canvas = document.querySelector(selectors[i]);
			if (canvas) { break; }
		}
		if (!canvas) { return {error: 'canvas not found'}; }
		if (canvas.width === 0 || canvas.height === 0) { return {zero: true}; }
		try {
			return {data: canvas.toDataURL('image/png')};
		} catch (e) {
			return {error: String(e)};
		}
	})()`

	var result captureResult
	if err := b.run(ctx, actionTimeout, chromedp.Evaluate(js, &result)); err != nil {
		return nil, fmt.Errorf("capture canvas: %w", err)
	}
	if result.Zero {
		return nil, surface.ErrZeroSurface
	}
	if result.Error != "" {
		return nil, fmt.Errorf("capture canvas: %s", result.Error)
	}

	data, err := decodePNGDataURL(result.Data)
	if err != nil {
		return nil, err
	}
	if len(data) < smallArtifactBytes {
		b.logger.Warn("captured image is suspiciously small, may be blank",
			logging.Int("bytes", len(data)))
	}
	return data, nil
}

func decodePNGDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, pngDataURLPrefix) {
		preview := dataURL
		if len(preview) > 64 {
			preview = preview[:64]
		}
		return nil, fmt.Errorf("unexpected canvas data URL %q", preview)
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[len(pngDataURLPrefix):])
	if err != nil {
		return nil, fmt.Errorf("decode canvas data URL: %w", err)
	}
	return data, nil
}
