package ui

import (
	"errors"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	default:
		path, err := exec.LookPath("xdg-open")
		if err != nil {
			return errors.New("xdg-open not found")
		}
		cmd = exec.Command(path, url)
	}
	return cmd.Start()
}

func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// openCmd opens an item link, falling back to copying it when no browser
// can be launched.
func (m Model) openCmd(url string) tea.Cmd {
	if url == "" {
		return nil
	}
	open, copyText := m.openURL, m.copyText
	return func() tea.Msg {
		if err := open(url); err != nil {
			if copyErr := copyText(url); copyErr == nil {
				return actionDoneMsg{action: "open", done: "No browser available, link copied"}
			}
			return actionDoneMsg{action: "open", err: err}
		}
		return actionDoneMsg{action: "open", done: "Opened in browser"}
	}
}

func (m Model) copyCmd(url string) tea.Cmd {
	if url == "" {
		return nil
	}
	copyText := m.copyText
	return func() tea.Msg {
		if err := copyText(url); err != nil {
			return actionDoneMsg{action: "copy", err: err}
		}
		return actionDoneMsg{action: "copy", done: "Link copied"}
	}
}
