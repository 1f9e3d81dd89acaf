package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/five82/inkwell/internal/engine"
)

// renderToasts stacks the current toasts, newest last. An expanded toast
// shows its full detail.
func (m Model) renderToasts() string {
	toasts := m.engine.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	width := min(toastWidth, m.width)
	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		boxes = append(boxes, m.renderToast(t, width))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func (m Model) renderToast(t engine.Toast, width int) string {
	styles := m.theme.Styles()
	titleStyle := styles.SuccessText
	border := m.theme.Success
	if t.Failed {
		titleStyle = styles.DangerText
		border = m.theme.Danger
	}

	inner := width - 4
	var b strings.Builder
	b.WriteString(titleStyle.Render(truncateText(t.Title, inner)))
	if t.Detail != "" {
		limit := 1
		if t.Expanded {
			limit = 0
		}
		for _, line := range wrapLines(t.Detail, inner, limit) {
			b.WriteString("\n")
			b.WriteString(styles.MutedText.Render(line))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(width - 2).
		Render(b.String())
}

// overlayBottomRight draws overlay over the bottom right corner of base.
func overlayBottomRight(base, overlay string, width int) string {
	if overlay == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	overLines := strings.Split(overlay, "\n")
	start := max(0, len(baseLines)-len(overLines)-footerHeight)
	for i, line := range overLines {
		row := start + i
		if row >= len(baseLines) {
			break
		}
		ow := lipgloss.Width(line)
		keep := max(0, width-ow)
		left := truncate.String(baseLines[row], uint(keep))
		if pad := keep - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		baseLines[row] = left + line
	}
	return strings.Join(baseLines, "\n")
}
