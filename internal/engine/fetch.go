package engine

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/readstate"
)

// SwitchView changes the feed selection. Pending marks for the old selection
// are flushed first; the viewed set, observation state and item list are then
// reset and a fresh load starts a new session.
func (m *Model) SwitchView(v View, q Query) tea.Cmd {
	flush := m.flush()

	m.view = v
	m.query = q.normalize()
	m.viewed = make(map[int64]struct{})
	m.observer.Start(m.now())
	m.session++
	m.refreshLoop++
	m.list.Replace(nil)
	m.page = 0
	m.hasMore = false
	m.loadErr = nil
	m.contentBottom = 0
	m.thumbs = make(map[int64]int)
	m.thumbFailed = make(map[int64]bool)

	m.log.Debug("view switched", "view", v.String(), "session", m.session)

	return tea.Batch(
		flush,
		m.fetch(fetchFresh, 1),
		m.after(readstate.CatchUpDelay, catchUpMsg{session: m.session}),
		m.scheduleRefresh(),
	)
}

// SetQuery changes sort, unread filter or page size under the same feed
// selection and reloads from the first page. The silent refresh interval
// restarts from now.
func (m *Model) SetQuery(q Query) tea.Cmd {
	m.query = q.normalize()
	m.refreshLoop++
	return tea.Batch(m.fetch(fetchFresh, 1), m.scheduleRefresh())
}

// Reload fetches the first page again, replacing the list.
func (m *Model) Reload() tea.Cmd {
	return m.fetch(fetchFresh, 1)
}

// LoadMore requests the next page. It does nothing while a load is
// outstanding or when the last page has been reached.
func (m *Model) LoadMore() tea.Cmd {
	if m.loading || !m.hasMore {
		return nil
	}
	return m.fetch(fetchMore, m.page+1)
}

// fetch begins a new fetch intent. The generation is taken here, before the
// command runs, so it reflects issue order rather than completion order.
func (m *Model) fetch(kind fetchKind, page int) tea.Cmd {
	if m.api == nil {
		return nil
	}
	gen := m.guard.Begin()
	if kind == fetchRefresh {
		m.refreshGen = gen
		m.refreshSkip = make(map[int64]struct{})
	} else {
		m.loading = true
		m.refreshGen = 0
		m.refreshSkip = nil
	}

	q := api.ItemQuery{
		UnreadOnly: m.query.UnreadOnly,
		Sort:       m.query.Sort,
		Page:       page,
		PerPage:    m.query.PerPage,
	}
	if m.view.Kind == ViewFeed {
		q.FeedID = m.view.FeedID
	}
	favorites := m.view.Kind == ViewFavorites
	ctx, client := m.ctx, m.api

	return func() tea.Msg {
		var (
			res api.ItemPage
			err error
		)
		if favorites {
			res, err = client.ListFavorites(ctx, q)
		} else {
			res, err = client.ListItems(ctx, q)
		}
		return itemsMsg{gen: gen, kind: kind, page: page, res: res, err: err}
	}
}

func (m *Model) handleItems(msg itemsMsg) tea.Cmd {
	if !m.guard.IsCurrent(msg.gen) {
		m.log.Debug("dropped stale response", "kind", msg.kind.String(), "gen", msg.gen, "current", m.guard.Current())
		return nil
	}
	var skip map[int64]struct{}
	if msg.kind == fetchRefresh {
		skip = m.refreshSkip
		m.refreshGen = 0
		m.refreshSkip = nil
	} else {
		m.loading = false
	}
	if msg.err != nil {
		if msg.kind == fetchRefresh {
			m.log.Warn("silent refresh failed", "view", m.view.String(), "error", msg.err)
			return nil
		}
		m.loadErr = msg.err
		m.log.Warn("item fetch failed", "view", m.view.String(), "page", msg.page, "error", msg.err)
		return nil
	}

	switch msg.kind {
	case fetchFresh:
		m.loadErr = nil
		m.list.Replace(msg.res.Items)
		m.page = msg.page
		m.hasMore = msg.res.HasMore
	case fetchMore:
		m.loadErr = nil
		added := m.list.Append(msg.res.Items)
		m.page = msg.page
		m.hasMore = msg.res.HasMore
		if dup := len(msg.res.Items) - added; dup > 0 {
			m.log.Debug("dropped duplicate items from page", "page", msg.page, "duplicates", dup)
		}
	case fetchRefresh:
		if changed := m.list.Refresh(withoutIDs(msg.res.Items, skip)); len(changed) > 0 {
			m.log.Debug("silent refresh updated items", "count", len(changed))
		}
	}
	return nil
}

// noteLocalUnread records ids whose unread flag was changed locally while a
// silent refresh is in flight. The refresh response predates the change, so
// its value for those ids is ignored.
func (m *Model) noteLocalUnread(ids []int64) {
	if m.refreshGen == 0 {
		return
	}
	for _, id := range ids {
		m.refreshSkip[id] = struct{}{}
	}
}

func withoutIDs(items []api.Item, skip map[int64]struct{}) []api.Item {
	if len(skip) == 0 {
		return items
	}
	out := make([]api.Item, 0, len(items))
	for _, item := range items {
		if _, ok := skip[item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.refreshEvery <= 0 {
		return nil
	}
	return m.after(m.refreshEvery, refreshTickMsg{loop: m.refreshLoop})
}

func (m *Model) handleRefreshTick(msg refreshTickMsg) tea.Cmd {
	if msg.loop != m.refreshLoop {
		return nil
	}
	next := m.scheduleRefresh()
	if m.loading {
		// A user fetch is outstanding; it will bring fresher data.
		return next
	}
	return tea.Batch(m.fetch(fetchRefresh, 1), next)
}
