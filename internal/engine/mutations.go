package engine

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/readstate"
)

// MaxThumbnailAttempts bounds thumbnail refreshes per card and session.
const MaxThumbnailAttempts = 3

// remoteCall performs the remote side of an optimistic mutation. It returns
// the authoritative value when the store reports one, or a zero patch to
// accept the optimistic value as sent.
type remoteCall func(ctx context.Context) (readstate.Patch, error)

// optimistic applies patch to every item match accepts, then runs call. The
// outcome is reconciled in handleMutation.
func (m *Model) optimistic(kind mutationKind, itemID int64, match func(api.Item) bool, patch readstate.Patch, call remoteCall) tea.Cmd {
	op := readstate.Begin(&m.list, match, patch)
	if patch.Unread != nil {
		m.noteLocalUnread(op.IDs)
	}
	ctx := m.ctx
	return func() tea.Msg {
		result, err := call(ctx)
		return mutationMsg{kind: kind, itemID: itemID, op: op, result: result, err: err}
	}
}

func (m *Model) handleMutation(msg mutationMsg) {
	outcome := msg.op.Settle(&m.list, msg.result, msg.err)
	m.log.Debug("mutation settled", "kind", msg.kind.String(), "items", len(msg.op.IDs), "outcome", outcome.String())

	switch msg.kind {
	case mutThumbnail:
		if msg.err != nil {
			m.thumbFailed[msg.itemID] = true
			m.log.Warn("thumbnail refresh failed", "item", msg.itemID, "error", msg.err)
		} else {
			delete(m.thumbFailed, msg.itemID)
		}
		return
	case mutMarkRead, mutMarkAll:
		if msg.err == nil {
			m.kickCounts()
		}
	}

	if outcome == readstate.RolledBack {
		m.notify(noticeFor(failureTitle(msg.kind), msg.err))
	}
}

func failureTitle(kind mutationKind) string {
	switch kind {
	case mutFavorite:
		return "Could not update favorite"
	case mutMarkRead:
		return "Could not mark item as read"
	case mutMarkAll:
		return "Could not mark items as read"
	default:
		return "Update failed"
	}
}

// ToggleFavorite flips the favorite flag of a loaded item.
func (m *Model) ToggleFavorite(id int64) tea.Cmd {
	item, ok := m.list.Get(id)
	if !ok || m.api == nil {
		return nil
	}
	client := m.api
	return m.optimistic(mutFavorite, id, readstate.ByID(id), readstate.SetFavorite(!item.IsFavorite),
		func(ctx context.Context) (readstate.Patch, error) {
			fav, err := client.ToggleFavorite(ctx, id)
			if err != nil {
				return readstate.Patch{}, err
			}
			return readstate.SetFavorite(fav), nil
		})
}

// MarkRead marks one item read explicitly, bypassing the batch.
func (m *Model) MarkRead(id int64) tea.Cmd {
	item, ok := m.list.Get(id)
	if !ok || m.api == nil {
		return nil
	}
	m.viewed[id] = struct{}{}
	if !item.IsUnread {
		return nil
	}
	client := m.api
	return m.optimistic(mutMarkRead, id, readstate.ByID(id), readstate.SetUnread(false),
		func(ctx context.Context) (readstate.Patch, error) {
			return readstate.Patch{}, client.MarkItemRead(ctx, id)
		})
}

// MarkAllRead marks every loaded item read. In a feed view the feed-scoped
// endpoint is used; elsewhere the loaded unread ids are sent as one set.
func (m *Model) MarkAllRead() tea.Cmd {
	if m.view.Kind == ViewFeed {
		return m.MarkFeedRead(m.view.FeedID)
	}
	if m.api == nil {
		return nil
	}
	ids := m.list.IDs(readstate.Unread)
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		m.viewed[id] = struct{}{}
	}
	client := m.api
	return m.optimistic(mutMarkAll, 0, readstate.ByIDs(ids), readstate.SetUnread(false),
		func(ctx context.Context) (readstate.Patch, error) {
			return readstate.Patch{}, client.MarkItemsRead(ctx, ids)
		})
}

// MarkFeedRead marks every item of a feed read remotely and every loaded item
// of that feed read locally.
func (m *Model) MarkFeedRead(feedID int64) tea.Cmd {
	if m.api == nil {
		return nil
	}
	for _, id := range m.list.IDs(readstate.ByFeed(feedID)) {
		m.viewed[id] = struct{}{}
	}
	client := m.api
	return m.optimistic(mutMarkAll, 0, readstate.ByFeed(feedID), readstate.SetUnread(false),
		func(ctx context.Context) (readstate.Patch, error) {
			return readstate.Patch{}, client.MarkFeedRead(ctx, feedID)
		})
}

// RefreshThumbnail asks the store to regenerate an item's thumbnail. The
// thumbnail is cleared while the request runs and restored if it fails. A
// card gets MaxThumbnailAttempts tries per session; further requests are
// refused without a remote call.
func (m *Model) RefreshThumbnail(id int64) tea.Cmd {
	if _, ok := m.list.Get(id); !ok || m.api == nil {
		return nil
	}
	if m.thumbs[id] >= MaxThumbnailAttempts {
		m.log.Debug("thumbnail retry limit reached", "item", id)
		return nil
	}
	m.thumbs[id]++
	delete(m.thumbFailed, id)

	client := m.api
	return m.optimistic(mutThumbnail, id, readstate.ByID(id), readstate.SetThumbnail(""),
		func(ctx context.Context) (readstate.Patch, error) {
			url, err := client.RefreshThumbnail(ctx, id)
			if err != nil {
				return readstate.Patch{}, err
			}
			return readstate.SetThumbnail(url), nil
		})
}

// ThumbnailState reports how many refreshes a card has used and whether the
// last one failed.
func (m *Model) ThumbnailState(id int64) (attempts int, failed bool) {
	return m.thumbs[id], m.thumbFailed[id]
}

// CanRetryThumbnail reports whether another refresh is allowed for a card.
func (m *Model) CanRetryThumbnail(id int64) bool {
	return m.thumbs[id] < MaxThumbnailAttempts
}
