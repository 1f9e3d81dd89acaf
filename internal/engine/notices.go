package engine

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
)

// ToastTTL is how long a collapsed toast stays on screen.
const ToastTTL = 8 * time.Second

const maxToasts = 3

// Notice is a blocking failure report that needs acknowledgment.
type Notice struct {
	Title  string
	Status int
	Detail string
}

// Toast is a transient report of an integration run.
type Toast struct {
	ID       uint64
	Title    string
	Detail   string
	Failed   bool
	Expanded bool
}

func noticeFor(title string, err error) Notice {
	n := Notice{Title: title}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		n.Status = statusErr.Status
		n.Detail = statusErr.Detail
	}
	if n.Detail == "" && err != nil {
		n.Detail = err.Error()
	}
	return n
}

func (m *Model) notify(n Notice) {
	m.log.Info("notice", "title", n.Title, "status", n.Status, "detail", n.Detail)
	m.notices = append(m.notices, n)
}

// Notice returns the oldest unacknowledged notice.
func (m *Model) Notice() (Notice, bool) {
	if len(m.notices) == 0 {
		return Notice{}, false
	}
	return m.notices[0], true
}

// DismissNotice acknowledges the oldest notice.
func (m *Model) DismissNotice() {
	if len(m.notices) > 0 {
		m.notices = m.notices[1:]
	}
}

// Toasts returns the visible toasts, oldest first.
func (m *Model) Toasts() []Toast {
	return m.toasts
}

func (m *Model) toast(t Toast) tea.Cmd {
	m.toastSeq++
	t.ID = m.toastSeq
	m.toasts = append(m.toasts, t)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return m.after(ToastTTL, toastExpireMsg{id: t.ID})
}

func (m *Model) expireToast(id uint64) {
	for _, t := range m.toasts {
		if t.ID == id && t.Expanded {
			return
		}
	}
	m.DismissToast(id)
}

// DismissToast removes a toast.
func (m *Model) DismissToast(id uint64) {
	out := m.toasts[:0:0]
	for _, t := range m.toasts {
		if t.ID != id {
			out = append(out, t)
		}
	}
	m.toasts = out
}

// ToggleToast expands or collapses a toast. An expanded toast stays until it
// is dismissed or collapsed again.
func (m *Model) ToggleToast(id uint64) tea.Cmd {
	for i := range m.toasts {
		if m.toasts[i].ID != id {
			continue
		}
		m.toasts[i].Expanded = !m.toasts[i].Expanded
		if !m.toasts[i].Expanded {
			return m.after(ToastTTL, toastExpireMsg{id: id})
		}
		return nil
	}
	return nil
}
