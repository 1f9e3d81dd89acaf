package engine

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/readstate"
)

func byFeed(pages map[int64][]api.Item) func(api.ItemQuery) (api.ItemPage, error) {
	return func(q api.ItemQuery) (api.ItemPage, error) {
		return api.ItemPage{Items: pages[q.FeedID]}, nil
	}
}

func TestSwitchViewResponsesOutOfOrder(t *testing.T) {
	fake := &fakeAPI{items: byFeed(map[int64][]api.Item{
		1: unread(1, 11, 12),
		2: unread(2, 21, 22),
	})}
	h := newHarness(t, fake)

	first := h.exec(h.m.SwitchView(FeedView(1), Query{}))
	second := h.exec(h.m.SwitchView(FeedView(2), Query{}))
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	h.send(second...)
	h.send(first...)

	assert.Equal(t, []int64{21, 22}, idsOf(h.m.Items()))
	assert.Equal(t, FeedView(2), h.m.View())
	assert.False(t, h.m.Loading())
}

func TestSwitchViewResponsesInOrder(t *testing.T) {
	fake := &fakeAPI{items: byFeed(map[int64][]api.Item{
		1: unread(1, 11, 12),
		2: unread(2, 21, 22),
	})}
	h := newHarness(t, fake)

	first := h.exec(h.m.SwitchView(FeedView(1), Query{}))
	second := h.exec(h.m.SwitchView(FeedView(2), Query{}))
	h.send(first...)
	assert.Empty(t, h.m.Items(), "superseded response never renders")
	h.send(second...)
	assert.Equal(t, []int64{21, 22}, idsOf(h.m.Items()))
}

func TestLoadMoreDroppedAfterSwitch(t *testing.T) {
	fake := &fakeAPI{items: func(q api.ItemQuery) (api.ItemPage, error) {
		if q.FeedID == 1 {
			return api.ItemPage{Items: unread(1, int64(q.Page*10+1), int64(q.Page*10+2)), HasMore: true}, nil
		}
		return api.ItemPage{Items: unread(2, 99)}, nil
	}}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(FeedView(1), Query{}))
	require.Equal(t, []int64{11, 12}, idsOf(h.m.Items()))

	more := h.exec(h.m.LoadMore())
	h.run(h.m.SwitchView(FeedView(2), Query{}))
	h.send(more...)

	assert.Equal(t, []int64{99}, idsOf(h.m.Items()))
	assert.Equal(t, 1, h.m.Page())
}

func TestPaginationDropsOverlap(t *testing.T) {
	first := make([]int64, 0, 20)
	for id := int64(1); id <= 20; id++ {
		first = append(first, id)
	}
	// Four new items arrived upstream, so page two starts at index 16 of
	// the old ordering.
	second := make([]int64, 0, 20)
	for id := int64(17); id <= 36; id++ {
		second = append(second, id)
	}

	fake := &fakeAPI{items: func(q api.ItemQuery) (api.ItemPage, error) {
		if q.Page == 1 {
			return api.ItemPage{Items: unread(1, first...), HasMore: true}, nil
		}
		return api.ItemPage{Items: unread(1, second...), HasMore: false}, nil
	}}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(AllItems(), Query{PerPage: 20}))
	h.run(h.m.LoadMore())

	got := idsOf(h.m.Items())
	require.Len(t, got, 36)
	for i, id := range got {
		assert.Equal(t, int64(i+1), id, "position %d", i)
	}
	assert.Equal(t, 2, h.m.Page())
	assert.False(t, h.m.HasMore())
	assert.Nil(t, h.m.LoadMore(), "no further pages")
}

func TestLoadMoreWhileLoading(t *testing.T) {
	fake := &fakeAPI{items: staticPage(unread(1, 1), true)}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(AllItems(), Query{}))

	pending := h.exec(h.m.LoadMore())
	require.True(t, h.m.Loading())
	assert.Nil(t, h.m.LoadMore())
	h.send(pending...)
	assert.False(t, h.m.Loading())
	assert.Equal(t, 2, fake.count("ListItems"))
}

func TestFetchUsesQueryAndView(t *testing.T) {
	fake := &fakeAPI{}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(FeedView(4), Query{Sort: api.SortOldest, UnreadOnly: true, PerPage: 15}))
	h.run(h.m.SwitchView(Favorites(), Query{}))

	lists := fake.find("ListItems")
	require.Len(t, lists, 1)
	assert.Equal(t, api.ItemQuery{FeedID: 4, UnreadOnly: true, Sort: api.SortOldest, Page: 1, PerPage: 15}, lists[0].query)
	assert.Equal(t, 1, fake.count("ListFavorites"))
}

func TestSetQueryReloadsFirstPage(t *testing.T) {
	fake := &fakeAPI{items: staticPage(unread(1, 1, 2), true)}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(AllItems(), Query{}))
	h.run(h.m.LoadMore())
	require.Equal(t, 2, h.m.Page())

	h.run(h.m.SetQuery(Query{UnreadOnly: true}))
	assert.Equal(t, 1, h.m.Page())
	assert.True(t, h.m.Query().UnreadOnly)
}

func TestFetchErrorKeepsList(t *testing.T) {
	fail := false
	fake := &fakeAPI{items: func(api.ItemQuery) (api.ItemPage, error) {
		if fail {
			return api.ItemPage{}, errors.New("connection refused")
		}
		return api.ItemPage{Items: unread(1, 1, 2)}, nil
	}}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(AllItems(), Query{}))

	fail = true
	h.run(h.m.Reload())
	require.Error(t, h.m.Err())
	assert.Equal(t, []int64{1, 2}, idsOf(h.m.Items()))
	assert.False(t, h.m.Loading())

	fail = false
	h.run(h.m.Reload())
	assert.NoError(t, h.m.Err())
}

func TestSilentRefreshPatchesUnreadOnly(t *testing.T) {
	initial := unread(1, 1, 2, 3)
	page := initial
	fake := &fakeAPI{items: func(api.ItemQuery) (api.ItemPage, error) {
		return api.ItemPage{Items: page}, nil
	}}
	h := newHarness(t, fake, func(o *Options) { o.RefreshEvery = 30 * time.Second })
	h.run(h.m.SwitchView(AllItems(), Query{}))

	page = []api.Item{
		{ID: 99, FeedID: 1, Title: "new", IsUnread: true},
		{ID: 3, FeedID: 1, Title: "renamed", IsUnread: false},
		{ID: 2, FeedID: 1, Title: "item", IsUnread: false},
	}
	h.advance(30 * time.Second)

	assert.Equal(t, 2, fake.count("ListItems"))
	assert.Equal(t, []int64{1, 2, 3}, idsOf(h.m.Items()), "no insertions, no reordering")
	item3, _ := h.m.Item(3)
	assert.False(t, item3.IsUnread)
	assert.Equal(t, "item", item3.Title, "only the unread flag is refreshed")
	item1, _ := h.m.Item(1)
	assert.True(t, item1.IsUnread, "items missing from the response are kept")
	assert.False(t, h.m.Loading(), "silent refresh does not show a spinner")
}

func TestSilentRefreshSkippedWhileLoading(t *testing.T) {
	fake := &fakeAPI{items: staticPage(unread(1, 1), false)}
	h := newHarness(t, fake, func(o *Options) { o.RefreshEvery = 30 * time.Second })
	h.run(h.m.SwitchView(AllItems(), Query{}))

	pending := h.exec(h.m.Reload())
	calls := fake.count("ListItems")
	h.advance(30 * time.Second)
	assert.Equal(t, calls, fake.count("ListItems"))

	h.send(pending...)
	h.advance(30 * time.Second)
	assert.Equal(t, calls+1, fake.count("ListItems"), "the loop keeps running")
}

func TestSilentRefreshLoopEndsWithSession(t *testing.T) {
	fake := &fakeAPI{}
	h := newHarness(t, fake, func(o *Options) { o.RefreshEvery = 30 * time.Second })
	h.run(h.m.SwitchView(FeedView(1), Query{}))
	h.run(h.m.SwitchView(FeedView(2), Query{}))
	calls := fake.count("ListItems")

	h.advance(30 * time.Second)
	lists := fake.find("ListItems")
	require.Len(t, lists, calls+1)
	assert.Equal(t, int64(2), lists[len(lists)-1].query.FeedID)
}

func TestSilentRefreshFailureIsQuiet(t *testing.T) {
	fail := false
	fake := &fakeAPI{items: func(api.ItemQuery) (api.ItemPage, error) {
		if fail {
			return api.ItemPage{}, errors.New("timeout")
		}
		return api.ItemPage{Items: unread(1, 1)}, nil
	}}
	h := newHarness(t, fake, func(o *Options) { o.RefreshEvery = 30 * time.Second })
	h.run(h.m.SwitchView(AllItems(), Query{}))

	fail = true
	h.advance(30 * time.Second)
	assert.NoError(t, h.m.Err())
	assert.Equal(t, []int64{1}, idsOf(h.m.Items()))
	_, ok := h.m.Notice()
	assert.False(t, ok)
}

func TestSilentRefreshDisabled(t *testing.T) {
	fake := &fakeAPI{}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(AllItems(), Query{}))
	h.advance(10 * time.Minute)
	assert.Equal(t, 1, fake.count("ListItems"))
}

// issueRefresh fires the silent refresh tick and returns its response
// without delivering it.
func issueRefresh(h *harness) []tea.Msg {
	h.t.Helper()
	return h.exec(h.m.Update(refreshTickMsg{loop: h.m.refreshLoop}))
}

func TestRefreshIssuedBeforeMarkReadDoesNotRevertIt(t *testing.T) {
	page := unread(1, 1, 2)
	fake := &fakeAPI{items: func(api.ItemQuery) (api.ItemPage, error) {
		return api.ItemPage{Items: page}, nil
	}}
	h := newHarness(t, fake, func(o *Options) { o.RefreshEvery = 30 * time.Second })
	h.run(h.m.SwitchView(AllItems(), Query{}))

	page = []api.Item{
		{ID: 1, FeedID: 1, IsUnread: true},
		{ID: 2, FeedID: 1, IsUnread: false},
	}
	inFlight := issueRefresh(h)
	require.Len(t, inFlight, 1)

	h.run(h.m.MarkRead(1))
	h.send(inFlight...)

	item1, _ := h.m.Item(1)
	assert.False(t, item1.IsUnread, "earlier refresh must not undo the mark")
	item2, _ := h.m.Item(2)
	assert.False(t, item2.IsUnread, "untouched items still take the refreshed value")

	// A refresh issued after the mark is authoritative again.
	h.send(issueRefresh(h)...)
	item1, _ = h.m.Item(1)
	assert.True(t, item1.IsUnread)
}

func TestRefreshIssuedBeforeBatchFlushDoesNotRevertIt(t *testing.T) {
	fake := &fakeAPI{items: staticPage(unread(1, 1, 2, 3, 4), false)}
	h := newHarness(t, fake, func(o *Options) { o.RefreshEvery = 30 * time.Second })
	h.run(h.m.SwitchView(AllItems(), Query{}))
	h.m.SetCards(cards(h.m.Items()))
	h.advance(readstate.CatchUpDelay)

	h.run(h.m.Scroll(20, 20))
	h.advance(readstate.ScrollThrottle)
	require.Equal(t, []int64{1, 2}, h.m.Pending())

	inFlight := issueRefresh(h)
	h.run(h.m.Flush())
	h.send(inFlight...)

	for _, id := range []int64{1, 2} {
		item, _ := h.m.Item(id)
		assert.False(t, item.IsUnread, "item %d reverted by an older refresh", id)
	}
	item3, _ := h.m.Item(3)
	assert.True(t, item3.IsUnread)
}

func TestSetQueryRestartsRefreshInterval(t *testing.T) {
	fake := &fakeAPI{items: staticPage(unread(1, 1), false)}
	h := newHarness(t, fake, func(o *Options) { o.RefreshEvery = 30 * time.Second })
	h.run(h.m.SwitchView(AllItems(), Query{}))

	h.advance(20 * time.Second)
	h.run(h.m.SetQuery(Query{UnreadOnly: true}))
	calls := fake.count("ListItems")

	h.advance(10 * time.Second)
	assert.Equal(t, calls, fake.count("ListItems"), "old interval no longer fires")

	h.advance(20 * time.Second)
	assert.Equal(t, calls+1, fake.count("ListItems"), "new interval runs from the query change")

	h.advance(30 * time.Second)
	assert.Equal(t, calls+2, fake.count("ListItems"))
}
