package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/engine"
)

// sidebarEntry is one selectable row of the feed sidebar.
type sidebarEntry struct {
	label  string
	unread int
	view   engine.View
}

func (m Model) sidebarEntries() []sidebarEntry {
	entries := make([]sidebarEntry, 0, len(m.snapshot.Feeds)+2)
	entries = append(entries,
		sidebarEntry{label: "All items", unread: m.snapshot.TotalUnread, view: engine.AllItems()},
		sidebarEntry{label: "Favorites", view: engine.Favorites()},
	)
	for _, f := range m.snapshot.Feeds {
		label := f.Title
		if label == "" {
			label = f.URL
		}
		entries = append(entries, sidebarEntry{label: label, unread: f.UnreadCount, view: engine.FeedView(f.ID)})
	}
	return entries
}

func (m Model) sidebarIndex(v engine.View) int {
	for i, e := range m.sidebarEntries() {
		if e.view == v {
			return i
		}
	}
	return 0
}

func (m *Model) clampSidebar() {
	n := len(m.sidebarEntries())
	m.sidebarRow = max(0, min(m.sidebarRow, n-1))
}

// sidebarStart is the first entry shown when the list is taller than the pane.
func (m Model) sidebarStart() int {
	return max(0, m.sidebarRow-m.listHeight()+1)
}

// handleSidebarKey processes keyboard input for the sidebar.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	entries := m.sidebarEntries()

	switch {
	case key.Matches(msg, m.keys.Down):
		m.sidebarRow = min(m.sidebarRow+1, len(entries)-1)
	case key.Matches(msg, m.keys.Up):
		m.sidebarRow = max(m.sidebarRow-1, 0)
	case key.Matches(msg, m.keys.Top):
		m.sidebarRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.sidebarRow = len(entries) - 1
	case key.Matches(msg, m.keys.Select):
		cmd := m.switchTo(entries[m.sidebarRow].view)
		return m, cmd
	case key.Matches(msg, m.keys.EditFeed):
		if feed, ok := m.snapshot.Feed(entries[m.sidebarRow].view.FeedID); ok {
			m.modal = newFeedForm(feed)
		}
	case key.Matches(msg, m.keys.DeleteFeed):
		if feed, ok := m.snapshot.Feed(entries[m.sidebarRow].view.FeedID); ok {
			m.modal = newConfirmModal(
				"Delete feed",
				fmt.Sprintf("Unsubscribe from %q? Its items will be removed.", feed.Title),
				feedDeleteMsg{id: feed.ID},
			)
		}
	}
	return m, nil
}

func (m Model) clickSidebar(row int) (Model, tea.Cmd) {
	entries := m.sidebarEntries()
	index := m.sidebarStart() + row
	if index >= len(entries) {
		return m, nil
	}
	m.sidebarRow = index
	cmd := m.switchTo(entries[index].view)
	return m, cmd
}

// renderSidebar renders the feed list pane.
func (m Model) renderSidebar() string {
	height := m.listHeight()
	bgColor := ternary(m.focus == paneSidebar, m.theme.FocusBg, m.theme.Surface)
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	current := m.engine.View()

	entries := m.sidebarEntries()
	start := m.sidebarStart()
	lines := make([]string, 0, height)
	for i := start; i < len(entries) && len(lines) < height; i++ {
		e := entries[i]
		count := ""
		if e.unread > 0 {
			count = fmt.Sprintf("%d", e.unread)
		}
		label := truncateText(e.label, sidebarWidth-len(count)-3)
		text := padRight(label, sidebarWidth-len(count)-2) + count

		style := styles.Text
		switch {
		case i == m.sidebarRow && m.focus == paneSidebar:
			lines = append(lines, m.theme.Styles().Selected.Width(sidebarWidth).Render(" "+text))
			continue
		case e.view == current:
			style = styles.AccentText.Bold(true)
		case e.unread == 0 && e.view.Kind == engine.ViewFeed:
			style = styles.MutedText
		}
		lines = append(lines, bg.FillLine(bg.Space()+bg.Render(text, style), sidebarWidth))
	}
	for len(lines) < height {
		lines = append(lines, bg.FillLine("", sidebarWidth))
	}
	return strings.Join(lines, "\n")
}
