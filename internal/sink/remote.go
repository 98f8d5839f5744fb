package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const artifactContentType = "image/png"

// Remote uploads artifacts via HTTP PUT under a base URL. Existence is
// checked with HEAD.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote constructs an HTTP sink. A nil client gets a sensible default.
func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{baseURL: baseURL, client: client}
}

func (r *Remote) Location() string { return r.baseURL }

func (r *Remote) artifactURL(name string) string {
	return r.baseURL + "/" + url.PathEscape(name)
}

func (r *Remote) Exists(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.artifactURL(name), nil)
	if err != nil {
		return false, fmt.Errorf("build existence check: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("existence check %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("existence check %s: unexpected status %s", name, resp.Status)
	}
}

func (r *Remote) Store(ctx context.Context, name string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.artifactURL(name), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload: %w", err)
	}
	req.Header.Set("Content-Type", artifactContentType)
	req.ContentLength = int64(len(data))

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload %s: unexpected status %s", name, resp.Status)
	}
	return nil
}
