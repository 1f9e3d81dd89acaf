// Package feedprobe fetches a feed URL to discover its title before the feed
// is added to the remote store.
package feedprobe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "inkwell/0.1 (+feed probe)"
)

// Prober fetches and parses feeds.
type Prober struct {
	http *http.Client
}

// New returns a Prober. A zero timeout uses the default.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Prober{http: &http.Client{Timeout: timeout}}
}

// NormalizeURL trims raw, assumes https when no scheme is given and rejects
// URLs without a host.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("feed URL is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.ParseRequestURI(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.New("feed URL looks invalid")
	}
	return u.String(), nil
}

// Title fetches feedURL and returns the channel title. A feed without a title
// yields the URL's host.
func (p *Prober) Title(ctx context.Context, feedURL string) (string, error) {
	normalized, err := NormalizeURL(feedURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalized, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %d from feed", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse feed: %w", err)
	}
	if title := strings.TrimSpace(feed.Title); title != "" {
		return title, nil
	}
	u, _ := url.Parse(normalized)
	return u.Host, nil
}
