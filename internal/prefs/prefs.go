// Package prefs handles inkwell display preferences persistence.
// Preferences are stored in ~/.config/inkwell/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user display preferences.
type Prefs struct {
	Theme            string          `toml:"theme"`
	ColumnWidth      int             `toml:"column_width"`
	FeedColumnWidth  map[string]int  `toml:"feed_column_width,omitempty"`
	ItemsPerPage     int             `toml:"items_per_page"`
	SortOrder        string          `toml:"sort_order"`
	UnreadOnly       map[string]bool `toml:"unread_only,omitempty"`
	SidebarCollapsed bool            `toml:"sidebar_collapsed"`
	AutoLoadMore     bool            `toml:"auto_load_more"`
}

const (
	defaultPrefsPath    = "~/.config/inkwell/prefs.toml"
	defaultTheme        = "Nightfox"
	defaultColumnWidth  = 80
	defaultItemsPerPage = 30
	defaultSortOrder    = "newest"

	minColumnWidth  = 40
	maxColumnWidth  = 200
	maxItemsPerPage = 200
)

// View keys for UnreadOnly.
const (
	ViewAll       = "all"
	ViewFavorites = "favorites"
)

// FeedKey returns the map key used for per-feed preferences.
func FeedKey(feedID int64) string {
	return "feed:" + strconv.FormatInt(feedID, 10)
}

// Default returns the preferences used when no file exists.
func Default() Prefs {
	return Prefs{
		Theme:        defaultTheme,
		ColumnWidth:  defaultColumnWidth,
		ItemsPerPage: defaultItemsPerPage,
		SortOrder:    defaultSortOrder,
		AutoLoadMore: true,
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	prefs := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default(), nil // Graceful degradation
	}

	return prefs.normalize(), nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// WidthFor returns the column width for a feed, falling back to the global
// width. A zero feedID means no feed is selected.
func (p Prefs) WidthFor(feedID int64) int {
	if feedID != 0 {
		if w, ok := p.FeedColumnWidth[FeedKey(feedID)]; ok && w > 0 {
			return clamp(w, minColumnWidth, maxColumnWidth)
		}
	}
	return p.ColumnWidth
}

// SetWidth stores a column width for a feed, or globally when feedID is zero.
func (p *Prefs) SetWidth(feedID int64, width int) {
	width = clamp(width, minColumnWidth, maxColumnWidth)
	if feedID == 0 {
		p.ColumnWidth = width
		return
	}
	if p.FeedColumnWidth == nil {
		p.FeedColumnWidth = make(map[string]int)
	}
	p.FeedColumnWidth[FeedKey(feedID)] = width
}

// UnreadOnlyFor reports whether the unread filter is on for a view key.
func (p Prefs) UnreadOnlyFor(view string) bool {
	return p.UnreadOnly[view]
}

// SetUnreadOnly stores the unread filter for a view key.
func (p *Prefs) SetUnreadOnly(view string, on bool) {
	if p.UnreadOnly == nil {
		p.UnreadOnly = make(map[string]bool)
	}
	if on {
		p.UnreadOnly[view] = true
		return
	}
	delete(p.UnreadOnly, view)
}

func (p Prefs) normalize() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if p.ColumnWidth <= 0 {
		p.ColumnWidth = defaultColumnWidth
	}
	p.ColumnWidth = clamp(p.ColumnWidth, minColumnWidth, maxColumnWidth)
	if p.ItemsPerPage <= 0 {
		p.ItemsPerPage = defaultItemsPerPage
	}
	if p.ItemsPerPage > maxItemsPerPage {
		p.ItemsPerPage = maxItemsPerPage
	}
	switch p.SortOrder {
	case "newest", "oldest":
	default:
		p.SortOrder = defaultSortOrder
	}
	return p
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
