package api

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
)

// Sort orders accepted by the item listing endpoints.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// Item mirrors a single entry returned by /api/items and /api/favorites.
type Item struct {
	ID           int64  `json:"id"`
	FeedID       int64  `json:"feed_id"`
	FeedTitle    string `json:"feed_title"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Summary      string `json:"summary"`
	Author       string `json:"author"`
	PublishedAt  string `json:"published_at"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsUnread     bool   `json:"is_unread"`
	IsFavorite   bool   `json:"is_favorite"`
}

// Published returns the parsed PublishedAt timestamp, or the zero time.
func (i Item) Published() time.Time {
	return parseTime(i.PublishedAt)
}

// ItemPage is one page of items plus the continuation flag.
type ItemPage struct {
	Items   []Item `json:"items"`
	HasMore bool   `json:"has_more"`
}

// Feed describes a subscribed feed with its aggregate unread count.
type Feed struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	UnreadCount    int     `json:"unread_count"`
	IntegrationIDs []int64 `json:"integration_ids"`
}

// FeedList mirrors /api/feeds.
type FeedList struct {
	Feeds       []Feed `json:"feeds"`
	TotalUnread int    `json:"total_unread"`
}

// FeedInput is the body for feed create and update. A nil or empty
// IntegrationIDs means no integrations are enabled for the feed.
type FeedInput struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	IntegrationIDs []int64 `json:"integration_ids"`
}

// MarshalJSON sends null rather than [] when no integrations are enabled.
func (f FeedInput) MarshalJSON() ([]byte, error) {
	type alias FeedInput
	out := alias(f)
	if len(out.IntegrationIDs) == 0 {
		out.IntegrationIDs = nil
	}
	return json.Marshal(out)
}

// Integration kinds.
const (
	IntegrationURL     = "url"
	IntegrationWebhook = "webhook"
)

// Integration is a user-defined outbound action. Template may reference
// {url} and {title}.
type Integration struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Template string `json:"template"`
}

// IntegrationInput is the body for integration create and update.
type IntegrationInput struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Template string `json:"template"`
}

// ExecutionResult reports the outcome of running an integration.
type ExecutionResult struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type favoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

type thumbnailResponse struct {
	ThumbnailURL string `json:"thumbnail_url"`
}

type integrationList struct {
	Integrations []Integration `json:"integrations"`
}

type markItemsRequest struct {
	IDs []int64 `json:"ids"`
}

type executeRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}
	}
	return t
}
