package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/engine"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

const modalWidth = 60

// Messages emitted by modals.

type feedSubmitMsg struct {
	id    int64
	input api.FeedInput
}

type feedDeleteMsg struct{ id int64 }

type integrationPickMsg struct {
	integrationID int64
	itemID        int64
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// renderModal centers the active modal over the screen.
func (m Model) renderModal() string {
	box := m.modal.View(m.theme, m.width, m.height)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// modalFrame draws a bordered dialog with a title and a hint line.
func modalFrame(theme Theme, border, title, body, hint string, width int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", width-6)))
	b.WriteString("\n\n")
	b.WriteString(body)
	if hint != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render(hint))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(width).
		Render(b.String())
}

// noticeModal shows a failed user action until acknowledged.
type noticeModal struct {
	notice engine.Notice
	detail viewport.Model
}

func newNoticeModal(n engine.Notice) *noticeModal {
	vp := viewport.New(modalWidth-6, 6)
	vp.SetContent(wordwrap.String(n.Detail, modalWidth-6))
	return &noticeModal{notice: n, detail: vp}
}

func (n *noticeModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return n, nil, false
	}
	if key.Matches(keyMsg, keys.Escape) || key.Matches(keyMsg, keys.Confirm) || key.Matches(keyMsg, keys.Quit) {
		return n, nil, true
	}
	var cmd tea.Cmd
	n.detail, cmd = n.detail.Update(msg)
	return n, cmd, false
}

func (n *noticeModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var body strings.Builder
	if n.notice.Status != 0 {
		body.WriteString(styles.DangerText.Render(fmt.Sprintf("HTTP %d", n.notice.Status)))
		body.WriteString("\n")
	}
	body.WriteString(styles.MutedText.Render("Nothing was changed."))
	if n.notice.Detail != "" {
		body.WriteString("\n\n")
		body.WriteString(styles.Text.Render(n.detail.View()))
	}
	return modalFrame(theme, theme.Danger, n.notice.Title, body.String(), "enter/esc dismiss  j/k scroll", min(modalWidth, width-4))
}

// confirmModal asks a yes/no question and emits onConfirm on yes.
type confirmModal struct {
	title     string
	body      string
	onConfirm tea.Msg
}

func newConfirmModal(title, body string, onConfirm tea.Msg) *confirmModal {
	return &confirmModal{title: title, body: body, onConfirm: onConfirm}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch keyMsg.String() {
	case "y", "Y", "enter":
		return c, emit(c.onConfirm), true
	case "n", "N", "esc", "q":
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	w := min(modalWidth, width-4)
	body := theme.Styles().Text.Render(wordwrap.String(c.body, w-6))
	return modalFrame(theme, theme.Warning, c.title, body, "y confirm  n cancel", w)
}

// integrationPicker chooses an integration to run against one item.
type integrationPicker struct {
	item         api.Item
	integrations []api.Integration
	cursor       int
}

func newIntegrationPicker(item api.Item, integrations []api.Integration) *integrationPicker {
	return &integrationPicker{item: item, integrations: integrations}
}

func (p *integrationPicker) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Escape):
		return p, nil, true
	case key.Matches(keyMsg, keys.Down):
		p.cursor = min(p.cursor+1, len(p.integrations)-1)
		return p, nil, false
	case key.Matches(keyMsg, keys.Up):
		p.cursor = max(p.cursor-1, 0)
		return p, nil, false
	case key.Matches(keyMsg, keys.Confirm):
		return p, p.pick(p.cursor), true
	}
	if s := keyMsg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if i := int(s[0] - '1'); i < len(p.integrations) {
			return p, p.pick(i), true
		}
	}
	return p, nil, false
}

func (p *integrationPicker) pick(i int) tea.Cmd {
	return emit(integrationPickMsg{integrationID: p.integrations[i].ID, itemID: p.item.ID})
}

func (p *integrationPicker) View(theme Theme, width, height int) string {
	w := min(modalWidth, width-4)
	styles := theme.Styles()
	var body strings.Builder
	body.WriteString(styles.MutedText.Render(truncateText(p.item.Title, w-6)))
	body.WriteString("\n\n")
	for i, in := range p.integrations {
		line := fmt.Sprintf("%d  %s", i+1, in.Name)
		if i >= 9 {
			line = "   " + in.Name
		}
		line = padRight(line, w-16) + in.Kind
		if i == p.cursor {
			body.WriteString(styles.Selected.Render(line))
		} else {
			body.WriteString(styles.Text.Render(line))
		}
		body.WriteString("\n")
	}
	return modalFrame(theme, theme.Accent, "Send to integration", strings.TrimRight(body.String(), "\n"), "enter/1-9 send  esc cancel", w)
}
