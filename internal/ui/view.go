package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderMain renders the header, the sidebar and card columns, and the
// footer, with toasts over the bottom right corner.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return overlayBottomRight(b.String(), m.renderToasts(), m.width)
}

// renderBody renders the row between header and footer.
func (m Model) renderBody() string {
	height := m.listHeight()
	cards := m.renderCardList()

	rest := m.width - m.layout.width
	columns := []string{}
	if m.sidebarVisible() {
		divider := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.BorderMuted)).
			Background(lipgloss.Color(m.theme.Background)).
			Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))
		columns = append(columns, m.renderSidebar(), divider)
		rest -= sidebarWidth + 1
	}
	columns = append(columns, cards)
	if rest > 0 {
		columns = append(columns, lipgloss.NewStyle().
			Background(lipgloss.Color(m.theme.Background)).
			Width(rest).
			Height(height).
			Render(""))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}
