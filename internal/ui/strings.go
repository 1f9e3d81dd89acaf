package ui

import (
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// truncateText shortens a string to the given cell width, adding an ellipsis
// if needed.
func truncateText(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	return truncate.StringWithTail(value, uint(limit), "…")
}

// wrapLines word-wraps text to width and keeps at most limit lines, marking
// the cut with an ellipsis. A limit of zero keeps every line.
func wrapLines(text string, width, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" || width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(wordwrap.String(text, width), "\n") {
		para = strings.TrimRight(para, " ")
		if para == "" && (len(lines) == 0 || lines[len(lines)-1] == "") {
			continue
		}
		lines = append(lines, truncateText(para, width))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
		last := strings.TrimRight(lines[limit-1], "…")
		lines[limit-1] = truncateText(last+" …", width)
	}
	return lines
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// ternary returns a if cond is true, otherwise b.
func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
