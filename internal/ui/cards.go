package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/content"
	"github.com/five82/inkwell/internal/engine"
	"github.com/five82/inkwell/internal/readstate"
)

// cardLayout is the rendered card column: one string per document row and
// the row span of every card.
type cardLayout struct {
	lines []string
	cards []readstate.Card
	width int
}

// thumbState reports thumbnail regeneration attempts for an item.
type thumbState func(id int64) (attempts int, failed bool)

// cardRows returns the plain text rows of one card, before styling.
func cardRows(item api.Item, width int, thumbs thumbState, now time.Time) (title, meta, thumb string, summary []string) {
	inner := max(1, width-cardPadding)

	marker := ternary(item.IsUnread, "● ", "  ")
	star := ternary(item.IsFavorite, " ★", "")
	title = marker + truncateText(item.Title, inner-2-len([]rune(star))) + star

	parts := []string{}
	if item.FeedTitle != "" {
		parts = append(parts, item.FeedTitle)
	}
	if item.Author != "" {
		parts = append(parts, item.Author)
	}
	if published := item.Published(); !published.IsZero() {
		parts = append(parts, humanize.RelTime(published, now, "ago", "from now"))
	}
	meta = "  " + truncateText(strings.Join(parts, " · "), inner-2)

	attempts, failed := 0, false
	if thumbs != nil {
		attempts, failed = thumbs(item.ID)
	}
	switch {
	case failed:
		thumb = fmt.Sprintf("  thumbnail failed (%d/%d)", attempts, engine.MaxThumbnailAttempts)
	case item.ThumbnailURL != "":
		thumb = "  ▣ " + truncateText(item.ThumbnailURL, inner-4)
	}

	for _, line := range wrapLines(content.PlainText(item.Summary), inner-2, summaryLines) {
		summary = append(summary, "  "+line)
	}
	return title, meta, thumb, summary
}

// renderCards lays out items top to bottom with a blank row between cards.
func renderCards(items []api.Item, width, selected int, thumbs thumbState, theme Theme, now time.Time) cardLayout {
	out := cardLayout{width: width}
	styles := theme.Styles()

	for i, item := range items {
		bgColor := theme.Surface
		switch {
		case i == selected:
			bgColor = theme.SelectionBg
		case !item.IsUnread:
			bgColor = theme.SurfaceAlt
		}
		s := styles.WithBackground(bgColor)
		bg := NewBgStyle(bgColor)

		titleStyle := s.Text.Bold(item.IsUnread)
		if !item.IsUnread {
			titleStyle = s.MutedText
		}

		title, meta, thumb, summary := cardRows(item, width, thumbs, now)

		top := len(out.lines)
		row := func(text string, style lipgloss.Style) {
			out.lines = append(out.lines, bg.FillLine(bg.Space()+bg.Render(text, style), width))
		}
		row(title, titleStyle)
		row(meta, s.FaintText)
		if thumb != "" {
			thumbStyle := s.InfoText
			if thumbs != nil {
				if _, failed := thumbs(item.ID); failed {
					thumbStyle = s.DangerText
				}
			}
			row(thumb, thumbStyle)
		}
		for _, line := range summary {
			row(line, ternaryStyle(item.IsUnread, s.Text, s.MutedText))
		}
		out.cards = append(out.cards, readstate.Card{ID: item.ID, Top: top, Bottom: len(out.lines) - 1})
		out.lines = append(out.lines, "")
	}
	return out
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}

// cardsWidth is the width of the card column for the current view.
func (m Model) cardsWidth() int {
	avail := m.width - 1
	if m.sidebarVisible() {
		avail -= sidebarWidth + 1
	}
	return max(minCardsWidth, min(m.prefs.WidthFor(m.engine.View().FeedID), avail))
}

func (m Model) sidebarVisible() bool {
	return !m.prefs.SidebarCollapsed && m.width >= LayoutCompactWidth
}

func (m Model) listHeight() int {
	return max(1, m.height-headerHeight-footerHeight)
}

// listLeft is the terminal column where the card list starts.
func (m Model) listLeft() int {
	if m.sidebarVisible() {
		return sidebarWidth + 1
	}
	return 0
}

// relayout re-renders the card column and reports its geometry.
func (m *Model) relayout() {
	items := m.engine.Items()
	if m.selected >= len(items) {
		m.selected = max(0, len(items)-1)
	}
	m.layout = renderCards(items, m.cardsWidth(), m.selected, m.engine.ThumbnailState, m.theme, time.Now())
	m.engine.SetCards(m.layout.cards)
	m.offset = min(m.offset, m.maxOffset())
}

func (m Model) maxOffset() int {
	return max(0, len(m.layout.lines)-m.listHeight())
}

func (m Model) selectedItem() (api.Item, bool) {
	items := m.engine.Items()
	if m.selected < 0 || m.selected >= len(items) {
		return api.Item{}, false
	}
	return items[m.selected], true
}

// resetList forgets selection, scroll position and hover for a new list.
func (m *Model) resetList() {
	m.selected = 0
	m.offset = 0
	if m.hovered != 0 {
		m.engine.HoverLeave(m.hovered)
		m.hovered = 0
	}
}

// setOffset scrolls the card column, reporting the new position.
func (m *Model) setOffset(offset int) tea.Cmd {
	offset = max(0, min(offset, m.maxOffset()))
	if offset == m.offset {
		return nil
	}
	m.offset = offset
	return m.engine.Scroll(offset, m.listHeight())
}

// selectCard moves the selection and scrolls it into view.
func (m *Model) selectCard(index int) tea.Cmd {
	if len(m.layout.cards) == 0 {
		return nil
	}
	index = max(0, min(index, len(m.layout.cards)-1))
	m.selected = index
	card := m.layout.cards[index]
	height := m.listHeight()
	offset := m.offset
	if card.Top < offset {
		offset = card.Top
	}
	if card.Bottom >= offset+height {
		offset = card.Bottom - height + 1
	}
	return m.setOffset(offset)
}

// scrollBy scrolls by delta rows, pulling the selection along when it
// leaves the viewport.
func (m *Model) scrollBy(delta int) tea.Cmd {
	cmd := m.setOffset(m.offset + delta)
	if len(m.layout.cards) == 0 {
		return cmd
	}
	height := m.listHeight()
	sel := m.layout.cards[min(m.selected, len(m.layout.cards)-1)]
	if sel.Bottom >= m.offset && sel.Top < m.offset+height {
		return cmd
	}
	for i, c := range m.layout.cards {
		if c.Bottom >= m.offset {
			m.selected = i
			break
		}
	}
	return cmd
}

// cardAt returns the card under a document row.
func (m Model) cardAt(row int) (int, readstate.Card, bool) {
	for i, c := range m.layout.cards {
		if row >= c.Top && row <= c.Bottom {
			return i, c, true
		}
	}
	return 0, readstate.Card{}, false
}

// handleMouse scrolls on the wheel, selects on click and reports hover.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.modal != nil || m.showHelp {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelDown:
		cmd := m.scrollBy(wheelStep)
		return m, cmd
	case tea.MouseButtonWheelUp:
		cmd := m.scrollBy(-wheelStep)
		return m, cmd
	}

	row := msg.Y - headerHeight
	inList := row >= 0 && row < m.listHeight() &&
		msg.X >= m.listLeft() && msg.X < m.listLeft()+m.layout.width

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if m.sidebarVisible() && msg.X < sidebarWidth && row >= 0 {
			return m.clickSidebar(row)
		}
		if inList {
			if i, _, ok := m.cardAt(m.offset + row); ok {
				m.focus = paneCards
				cmd := m.selectCard(i)
				return m, cmd
			}
		}
		return m, nil
	}

	if msg.Action != tea.MouseActionMotion {
		return m, nil
	}

	var id int64
	if inList {
		if _, card, ok := m.cardAt(m.offset + row); ok {
			id = card.ID
		}
	}
	if id == m.hovered {
		return m, nil
	}
	if m.hovered != 0 {
		m.engine.HoverLeave(m.hovered)
	}
	m.hovered = id
	if id == 0 {
		return m, nil
	}
	return m, m.engine.HoverEnter(id)
}

// renderCardList renders the visible window of the card column.
func (m Model) renderCardList() string {
	height := m.listHeight()
	width := m.layout.width
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	if len(m.layout.lines) == 0 {
		var msg string
		switch {
		case m.engine.Loading():
			msg = "Loading…"
		case m.engine.Err() != nil:
			msg = "Could not load items: " + m.engine.Err().Error()
		case m.engine.Query().UnreadOnly:
			msg = "No unread items"
		default:
			msg = "No items"
		}
		lines := make([]string, height)
		lines[0] = bg.FillLine(bg.Space()+bg.Render(truncateText(msg, width-1), styles.MutedText), width)
		for i := 1; i < height; i++ {
			lines[i] = bg.FillLine("", width)
		}
		return strings.Join(lines, "\n")
	}

	end := min(len(m.layout.lines), m.offset+height)
	visible := make([]string, 0, height)
	for _, line := range m.layout.lines[m.offset:end] {
		if line == "" {
			line = bg.FillLine("", width)
		}
		visible = append(visible, line)
	}

	// The row after the last card reports paging state.
	if end == len(m.layout.lines) && len(visible) < height {
		var tail string
		switch {
		case m.engine.Loading():
			tail = "Loading more…"
		case m.engine.HasMore():
			tail = "More items available (L to load)"
		default:
			tail = "End of list"
		}
		visible = append(visible, bg.FillLine(bg.Space()+bg.Render(tail, styles.FaintText), width))
	}
	for len(visible) < height {
		visible = append(visible, bg.FillLine("", width))
	}
	return strings.Join(visible, "\n")
}
