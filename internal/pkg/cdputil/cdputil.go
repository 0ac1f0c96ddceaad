// Package cdputil probes Chrome DevTools Protocol endpoints.
package cdputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// newHTTPClient is swappable in tests.
var newHTTPClient = func(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// VersionURL derives the http /json/version probe address from a CDP
// attach URL (ws:// or wss://).
func VersionURL(cdpURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(cdpURL))
	if err != nil {
		return "", fmt.Errorf("invalid cdp url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid cdp url %q: missing host", cdpURL)
	}

	scheme := "http"
	if u.Scheme == "wss" || u.Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/json/version", scheme, u.Host), nil
}

// CheckReachable fetches the probe URL and returns the raw version payload.
func CheckReachable(ctx context.Context, probeURL string, timeout time.Duration) ([]byte, error) {
	if strings.TrimSpace(probeURL) == "" {
		return nil, fmt.Errorf("missing url")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := newHTTPClient(timeout).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, probeURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*32))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response from %s", probeURL)
	}

	return body, nil
}
