package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the feed store HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL        = "127.0.0.1:8750"
	defaultUserAgent      = "inkwell/0.1"
	defaultRequestTimeout = 10 * time.Second
)

// StatusError is returned when the store answers with an HTTP error status.
type StatusError struct {
	Path   string
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Detail)
}

// NewClient builds a Client for the given base URL or host:port. A zero
// timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// ItemQuery filters and pages an item listing.
type ItemQuery struct {
	FeedID     int64
	UnreadOnly bool
	Sort       string
	Page       int
	PerPage    int
}

func (q ItemQuery) values() url.Values {
	values := url.Values{}
	if q.FeedID > 0 {
		values.Set("feed_id", strconv.FormatInt(q.FeedID, 10))
	}
	if q.UnreadOnly {
		values.Set("unread", "1")
	}
	if sort := strings.TrimSpace(q.Sort); sort != "" {
		values.Set("sort", sort)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return values
}

// ListItems fetches one page of items.
func (c *Client) ListItems(ctx context.Context, query ItemQuery) (ItemPage, error) {
	rel := &url.URL{Path: "/api/items", RawQuery: query.values().Encode()}
	var page ItemPage
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &page); err != nil {
		return ItemPage{}, err
	}
	return page, nil
}

// ListFavorites fetches one page of favorited items. FeedID and UnreadOnly
// are ignored.
func (c *Client) ListFavorites(ctx context.Context, query ItemQuery) (ItemPage, error) {
	query.FeedID = 0
	query.UnreadOnly = false
	rel := &url.URL{Path: "/api/favorites", RawQuery: query.values().Encode()}
	var page ItemPage
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &page); err != nil {
		return ItemPage{}, err
	}
	return page, nil
}

// MarkItemRead marks a single item read.
func (c *Client) MarkItemRead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/items/%d/read", id), nil, nil)
}

// MarkItemsRead marks a set of items read in one call.
func (c *Client) MarkItemsRead(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/items/read", markItemsRequest{IDs: ids}, nil)
}

// MarkFeedRead marks every item of a feed read.
func (c *Client) MarkFeedRead(ctx context.Context, feedID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/feeds/%d/read", feedID), nil, nil)
}

// ToggleFavorite flips the favorite flag and returns the resulting state.
func (c *Client) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	var payload favoriteResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/items/%d/favorite", id), nil, &payload); err != nil {
		return false, err
	}
	return payload.IsFavorite, nil
}

// RefreshThumbnail asks the store to regenerate an item's thumbnail.
func (c *Client) RefreshThumbnail(ctx context.Context, id int64) (string, error) {
	var payload thumbnailResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/items/%d/thumbnail", id), nil, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.ThumbnailURL) == "" {
		return "", fmt.Errorf("thumbnail refresh returned no image")
	}
	return payload.ThumbnailURL, nil
}

// ListFeeds returns all feeds with aggregate unread counts.
func (c *Client) ListFeeds(ctx context.Context) (FeedList, error) {
	var payload FeedList
	if err := c.do(ctx, http.MethodGet, "/api/feeds", nil, &payload); err != nil {
		return FeedList{}, err
	}
	for i := range payload.Feeds {
		if len(payload.Feeds[i].IntegrationIDs) == 0 {
			payload.Feeds[i].IntegrationIDs = nil
		}
	}
	return payload, nil
}

// CreateFeed subscribes to a new feed.
func (c *Client) CreateFeed(ctx context.Context, in FeedInput) (Feed, error) {
	var feed Feed
	if err := c.do(ctx, http.MethodPost, "/api/feeds", in, &feed); err != nil {
		return Feed{}, err
	}
	return feed, nil
}

// UpdateFeed replaces a feed's editable fields.
func (c *Client) UpdateFeed(ctx context.Context, id int64, in FeedInput) (Feed, error) {
	var feed Feed
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/feeds/%d", id), in, &feed); err != nil {
		return Feed{}, err
	}
	return feed, nil
}

// DeleteFeed unsubscribes from a feed.
func (c *Client) DeleteFeed(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/feeds/%d", id), nil, nil)
}

// ListIntegrations returns all configured integrations.
func (c *Client) ListIntegrations(ctx context.Context) ([]Integration, error) {
	var payload integrationList
	if err := c.do(ctx, http.MethodGet, "/api/integrations", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Integrations, nil
}

// CreateIntegration adds an integration.
func (c *Client) CreateIntegration(ctx context.Context, in IntegrationInput) (Integration, error) {
	var out Integration
	if err := c.do(ctx, http.MethodPost, "/api/integrations", in, &out); err != nil {
		return Integration{}, err
	}
	return out, nil
}

// UpdateIntegration replaces an integration's fields.
func (c *Client) UpdateIntegration(ctx context.Context, id int64, in IntegrationInput) (Integration, error) {
	var out Integration
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/integrations/%d", id), in, &out); err != nil {
		return Integration{}, err
	}
	return out, nil
}

// DeleteIntegration removes an integration.
func (c *Client) DeleteIntegration(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/integrations/%d", id), nil, nil)
}

// ExecuteIntegration runs an integration against an item's url and title.
func (c *Client) ExecuteIntegration(ctx context.Context, id int64, itemURL, title string) (ExecutionResult, error) {
	var out ExecutionResult
	body := executeRequest{URL: itemURL, Title: title}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/integrations/%d/execute", id), body, &out); err != nil {
		return ExecutionResult{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.Path, Status: resp.StatusCode, Detail: readErrorDetail(resp.Body)}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Detail != "":
			return body.Detail
		case body.Error != "":
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
