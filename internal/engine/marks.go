package engine

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/readstate"
)

// SetCards reports the geometry of the cards currently rendered, in document
// rows. Unread state is taken from the list, not from the caller.
func (m *Model) SetCards(cards []readstate.Card) {
	bottom := 0
	for i := range cards {
		if item, ok := m.list.Get(cards[i].ID); ok {
			cards[i].Unread = item.IsUnread
		} else {
			cards[i].Unread = false
		}
		bottom = max(bottom, cards[i].Bottom)
	}
	m.observer.SetCards(cards)
	m.contentBottom = bottom
}

// Scroll reports the viewport's scroll offset and height in rows.
func (m *Model) Scroll(offset, height int) tea.Cmd {
	var cmds []tea.Cmd
	if m.observer.Scroll(offset, height) {
		cmds = append(cmds, m.after(readstate.ScrollThrottle, scrollEvalMsg{session: m.session}))
	}
	if m.autoLoad && m.contentBottom > 0 && offset+height > m.contentBottom {
		cmds = append(cmds, m.LoadMore())
	}
	return tea.Batch(cmds...)
}

// HoverEnter reports the pointer moving onto a card.
func (m *Model) HoverEnter(id int64) tea.Cmd {
	token, ok := m.observer.Enter(id)
	if !ok {
		return nil
	}
	return m.after(readstate.HoverDwell, dwellMsg{session: m.session, id: id, token: token})
}

// HoverLeave reports the pointer leaving a card.
func (m *Model) HoverLeave(id int64) {
	m.observer.Leave(id)
}

func (m *Model) handleDwell(msg dwellMsg) tea.Cmd {
	if msg.session != m.session {
		return nil
	}
	if !m.observer.DwellElapsed(msg.id, msg.token) {
		return nil
	}
	return m.markViewed(msg.id)
}

func (m *Model) markSeen(ids []int64) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, m.markViewed(id))
	}
	return tea.Batch(cmds...)
}

// markViewed is the sink for both observation triggers.
func (m *Model) markViewed(id int64) tea.Cmd {
	if _, seen := m.viewed[id]; seen {
		return nil
	}
	item, ok := m.list.Get(id)
	if !ok {
		return nil
	}
	m.viewed[id] = struct{}{}
	if !item.IsUnread {
		return nil
	}
	token, ok := m.batch.Observe(id)
	if !ok {
		return nil
	}
	return m.after(readstate.FlushDelay, flushTimerMsg{token: token})
}

// Flush sends pending marks now instead of waiting for the quiet period.
func (m *Model) Flush() tea.Cmd {
	return m.flush()
}

func (m *Model) flush() tea.Cmd {
	ids := m.batch.Flush()
	if len(ids) == 0 || m.api == nil {
		m.batch.Settle(ids)
		return nil
	}
	m.log.Debug("flushing marks", "count", len(ids))
	ctx, client := m.ctx, m.api
	return func() tea.Msg {
		return marksDoneMsg{ids: ids, err: client.MarkItemsRead(ctx, ids)}
	}
}

func (m *Model) handleMarksDone(msg marksDoneMsg) {
	m.batch.Settle(msg.ids)
	if msg.err != nil {
		// Not re-enqueued: the items stay unread remotely until seen again
		// in a later session.
		m.log.Warn("batch mark failed", "count", len(msg.ids), "error", msg.err)
		return
	}
	m.list.PatchMatching(readstate.ByIDs(msg.ids), readstate.SetUnread(false))
	m.noteLocalUnread(msg.ids)
	m.kickCounts()
}

func (m *Model) kickCounts() {
	if m.counts != nil {
		m.counts.Kick()
	}
}
