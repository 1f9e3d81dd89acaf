package ui

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/engine"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("inkwell", styles.Logo),
		bg.Render(m.viewLabel(), styles.Text.Bold(true)),
	}

	if m.snapshot.HasFeeds {
		parts = append(parts,
			bg.Render("Unread:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", m.snapshot.TotalUnread), styles.Text))
	}

	if m.engine.Loading() {
		parts = append(parts, styles.Badge("loading").Render("LOADING"))
	}

	if m.snapshot.IsOffline() {
		parts = append(parts,
			styles.Badge("offline").Render("OFFLINE"),
			bg.Render(classifyConnectionError(m.snapshot.LastError), styles.WarningText))
	}

	if m.width >= LayoutWideWidth {
		q := m.engine.Query()
		filters := []string{q.Sort}
		if q.UnreadOnly {
			filters = append(filters, "unread only")
		}
		if pending := len(m.engine.Pending()); pending > 0 {
			filters = append(filters, fmt.Sprintf("%d pending", pending))
		}
		parts = append(parts, bg.Render(strings.Join(filters, " · "), styles.FaintText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(headerHeight).
		Render(bg.Join(parts, sep))
}

// viewLabel names the current feed selection.
func (m Model) viewLabel() string {
	v := m.engine.View()
	switch v.Kind {
	case engine.ViewFavorites:
		return "Favorites"
	case engine.ViewFeed:
		if feed, ok := m.snapshot.Feed(v.FeedID); ok && feed.Title != "" {
			return truncateText(feed.Title, 40)
		}
		return fmt.Sprintf("Feed %d", v.FeedID)
	default:
		return "All items"
	}
}

// renderFooter renders the key hint line, or the last status message.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var text string
	if m.status != "" {
		text = bg.Render(m.status, styles.AccentText)
	} else {
		hints := []string{"? help", "tab pane", "enter open", "f fav", "m read", "M all read", "i send", "u unread", "q quit"}
		if m.focus == paneSidebar {
			hints = []string{"? help", "tab pane", "enter view", "n add", "e edit", "D delete", "q quit"}
		}
		text = bg.Render(strings.Join(hints, "  "), styles.MutedText)
	}
	return bg.FillLine(text, m.width)
}

// classifyConnectionError returns a short description of why the feed
// counts could not be refreshed.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("server returned %d", statusErr.Status)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "server unreachable"
	case strings.Contains(msg, "no such host"):
		return "unknown host"
	default:
		return truncateText(msg, 40)
	}
}
