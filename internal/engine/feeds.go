package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/history"
)

// CreateFeed subscribes to a feed. A blank title is filled in from the feed
// document before the store is called.
func (m *Model) CreateFeed(in api.FeedInput) tea.Cmd {
	if m.api == nil {
		return nil
	}
	in.URL = strings.TrimSpace(in.URL)
	in.Title = strings.TrimSpace(in.Title)
	ctx, client, prober, logger := m.ctx, m.api, m.prober, m.log
	return func() tea.Msg {
		if in.Title == "" && prober != nil {
			title, err := prober.Title(ctx, in.URL)
			if err != nil {
				logger.Debug("feed title probe failed", "url", in.URL, "error", err)
			} else {
				in.Title = title
			}
		}
		feed, err := client.CreateFeed(ctx, in)
		return feedSavedMsg{action: feedCreate, feed: feed, err: err}
	}
}

// UpdateFeed edits a feed. The sidebar shows the new values immediately and
// reverts if the store rejects them.
func (m *Model) UpdateFeed(id int64, in api.FeedInput) tea.Cmd {
	if m.api == nil {
		return nil
	}
	var prev api.Feed
	if m.feeds != nil {
		if current, ok := m.feeds.Feed(id); ok {
			prev = current
			next := current
			next.Title = in.Title
			next.URL = in.URL
			next.IntegrationIDs = append([]int64(nil), in.IntegrationIDs...)
			m.feeds.PutFeed(next)
		}
	}
	ctx, client := m.ctx, m.api
	return func() tea.Msg {
		feed, err := client.UpdateFeed(ctx, id, in)
		return feedSavedMsg{action: feedUpdate, feed: feed, prev: prev, err: err}
	}
}

// DeleteFeed unsubscribes from a feed. The feed leaves the sidebar
// immediately and returns at its old position if the store refuses. Deleting
// the feed being viewed switches to all items.
func (m *Model) DeleteFeed(id int64) tea.Cmd {
	if m.api == nil {
		return nil
	}
	msg := feedSavedMsg{action: feedDelete, prev: api.Feed{ID: id}, index: -1}
	if m.feeds != nil {
		if removed, index, ok := m.feeds.RemoveFeed(id); ok {
			msg.prev, msg.index = removed, index
		}
	}

	var switchCmd tea.Cmd
	if m.view.Kind == ViewFeed && m.view.FeedID == id {
		switchCmd = m.SwitchView(AllItems(), m.query)
	}

	ctx, client := m.ctx, m.api
	return tea.Batch(switchCmd, func() tea.Msg {
		msg.err = client.DeleteFeed(ctx, id)
		return msg
	})
}

func (m *Model) handleFeedSaved(msg feedSavedMsg) tea.Cmd {
	switch msg.action {
	case feedCreate:
		if msg.err != nil {
			m.notify(noticeFor("Could not add feed", msg.err))
			return nil
		}
		if m.feeds != nil {
			m.feeds.PutFeed(msg.feed)
		}
	case feedUpdate:
		if msg.err != nil {
			if m.feeds != nil && msg.prev.ID != 0 {
				m.feeds.PutFeed(msg.prev)
			}
			m.notify(noticeFor("Could not update feed", msg.err))
			return nil
		}
		if m.feeds != nil {
			// The edit response does not carry a fresh unread count.
			if current, ok := m.feeds.Feed(msg.feed.ID); ok && msg.feed.UnreadCount == 0 {
				msg.feed.UnreadCount = current.UnreadCount
			}
			m.feeds.PutFeed(msg.feed)
		}
	case feedDelete:
		if msg.err != nil {
			if m.feeds != nil && msg.index >= 0 {
				m.feeds.RestoreFeed(msg.prev, msg.index)
			}
			m.notify(noticeFor("Could not delete feed", msg.err))
			return nil
		}
	}
	m.kickCounts()
	return nil
}

// LoadIntegrations fetches the integration list.
func (m *Model) LoadIntegrations() tea.Cmd {
	if m.api == nil {
		return nil
	}
	ctx, client := m.ctx, m.api
	return func() tea.Msg {
		list, err := client.ListIntegrations(ctx)
		return integrationsMsg{list: list, err: err}
	}
}

func (m *Model) handleIntegrations(msg integrationsMsg) {
	if msg.err != nil {
		m.log.Warn("load integrations failed", "error", msg.err)
		return
	}
	m.integrations = msg.list
}

// CreateIntegration adds an integration and reloads the list.
func (m *Model) CreateIntegration(in api.IntegrationInput) tea.Cmd {
	return m.saveIntegration("add", func(ctx context.Context, client API) error {
		_, err := client.CreateIntegration(ctx, in)
		return err
	})
}

// UpdateIntegration edits an integration and reloads the list.
func (m *Model) UpdateIntegration(id int64, in api.IntegrationInput) tea.Cmd {
	return m.saveIntegration("update", func(ctx context.Context, client API) error {
		_, err := client.UpdateIntegration(ctx, id, in)
		return err
	})
}

// DeleteIntegration removes an integration and reloads the list.
func (m *Model) DeleteIntegration(id int64) tea.Cmd {
	return m.saveIntegration("delete", func(ctx context.Context, client API) error {
		return client.DeleteIntegration(ctx, id)
	})
}

func (m *Model) saveIntegration(verb string, call func(context.Context, API) error) tea.Cmd {
	if m.api == nil {
		return nil
	}
	ctx, client := m.ctx, m.api
	return func() tea.Msg {
		return integrationSavedMsg{verb: verb, err: call(ctx, client)}
	}
}

func (m *Model) handleIntegrationSaved(msg integrationSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.notify(noticeFor(fmt.Sprintf("Could not %s integration", msg.verb), msg.err))
		return nil
	}
	return m.LoadIntegrations()
}

// ExecuteIntegration runs an integration against a loaded item. The outcome
// is recorded in the history store and reported as a toast; nothing is
// rolled back on failure.
func (m *Model) ExecuteIntegration(integrationID, itemID int64) tea.Cmd {
	if m.api == nil {
		return nil
	}
	item, ok := m.list.Get(itemID)
	if !ok {
		return nil
	}
	var integration api.Integration
	found := false
	for _, in := range m.integrations {
		if in.ID == integrationID {
			integration, found = in, true
			break
		}
	}
	if !found {
		m.log.Warn("execute unknown integration", "integration", integrationID)
		return nil
	}

	ctx, client, recorder := m.ctx, m.api, m.history
	return func() tea.Msg {
		result, err := client.ExecuteIntegration(ctx, integration.ID, item.URL, item.Title)
		msg := executedMsg{integration: integration, item: item, result: result, err: err}
		if recorder != nil {
			msg.recordErr = recorder.Record(ctx, historyEntry(integration, item, result, err))
		}
		return msg
	}
}

func historyEntry(in api.Integration, item api.Item, result api.ExecutionResult, err error) history.Entry {
	e := history.Entry{
		IntegrationID:   in.ID,
		IntegrationName: in.Name,
		ItemID:          item.ID,
		ItemURL:         item.URL,
		ItemTitle:       item.Title,
		Status:          result.Status,
		Detail:          result.Detail,
		OK:              executionOK(result, err),
	}
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			e.Status = statusErr.Status
		}
		e.Detail = err.Error()
	}
	return e
}

func executionOK(result api.ExecutionResult, err error) bool {
	if err != nil {
		return false
	}
	return result.Status == 0 || (result.Status >= 200 && result.Status < 300)
}

func (m *Model) handleExecuted(msg executedMsg) tea.Cmd {
	if msg.recordErr != nil {
		m.log.Warn("record integration history failed", "integration", msg.integration.ID, "error", msg.recordErr)
	}

	t := Toast{Title: fmt.Sprintf("Sent to %s", msg.integration.Name), Detail: msg.result.Detail}
	if !executionOK(msg.result, msg.err) {
		t.Failed = true
		t.Title = fmt.Sprintf("%s failed", msg.integration.Name)
		switch {
		case msg.err != nil:
			n := noticeFor("", msg.err)
			t.Detail = n.Detail
			if n.Status != 0 {
				t.Detail = fmt.Sprintf("status %d: %s", n.Status, n.Detail)
			}
		default:
			t.Detail = fmt.Sprintf("status %d: %s", msg.result.Status, msg.result.Detail)
		}
		m.log.Warn("integration failed", "integration", msg.integration.ID, "item", msg.item.ID, "detail", t.Detail)
	}
	return m.toast(t)
}
