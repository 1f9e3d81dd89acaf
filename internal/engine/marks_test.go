package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/readstate"
)

// loaded returns a harness showing items 1..n of feed 1, all unread, with
// their cards mounted and the startup guard already lifted.
func loaded(t *testing.T, fake *fakeAPI, n int) *harness {
	t.Helper()
	ids := make([]int64, 0, n)
	for id := int64(1); id <= int64(n); id++ {
		ids = append(ids, id)
	}
	if fake.items == nil {
		fake.items = staticPage(unread(1, ids...), false)
	}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(AllItems(), Query{}))
	h.m.SetCards(cards(h.m.Items()))
	h.advance(readstate.CatchUpDelay)
	return h
}

func TestScrollBatchesOneCallPerCycle(t *testing.T) {
	fake := &fakeAPI{}
	h := loaded(t, fake, 6)

	// waterline 30 + 4: cards ending at 9, 19, 29.
	h.run(h.m.Scroll(30, 20))
	h.advance(readstate.ScrollThrottle)
	assert.Equal(t, []int64{1, 2, 3}, h.m.Pending())

	// waterline 50 + 4: adds the cards ending at 39 and 49.
	h.run(h.m.Scroll(50, 20))
	h.advance(readstate.ScrollThrottle)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, h.m.Pending())
	assert.Zero(t, fake.count("MarkItemsRead"), "quiet period not over yet")

	h.advance(readstate.FlushDelay)

	marks := fake.find("MarkItemsRead")
	require.Len(t, marks, 1)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, marks[0].ids)
	assert.Empty(t, h.m.Pending())
	for _, it := range h.m.Items() {
		assert.Equal(t, it.ID == 6, it.IsUnread, "item %d", it.ID)
	}
	assert.Equal(t, 1, h.kicks)

	h.advance(time.Minute)
	assert.Equal(t, 1, fake.count("MarkItemsRead"))
}

func TestScrollThrottleUsesLatestPosition(t *testing.T) {
	h := loaded(t, &fakeAPI{}, 6)

	h.run(h.m.Scroll(0, 20))
	h.run(h.m.Scroll(10, 20))
	h.run(h.m.Scroll(20, 20))
	h.advance(readstate.ScrollThrottle)

	// waterline 20 + 4.
	assert.Equal(t, []int64{1, 2}, h.m.Pending())
}

func TestStartupGuardDefersToCatchUp(t *testing.T) {
	fake := &fakeAPI{items: staticPage(unread(1, 1, 2, 3, 4), false)}
	h := newHarness(t, fake)
	h.run(h.m.SwitchView(AllItems(), Query{}))
	h.m.SetCards(cards(h.m.Items()))

	h.run(h.m.Scroll(20, 20))
	h.advance(readstate.ScrollThrottle)
	assert.Empty(t, h.m.Pending(), "evaluation suppressed right after load")

	h.advance(readstate.CatchUpDelay - readstate.ScrollThrottle)
	assert.Equal(t, []int64{1, 2}, h.m.Pending())
}

func TestReadItemsAreNotQueued(t *testing.T) {
	items := unread(1, 1, 2, 3)
	items[1].IsUnread = false
	fake := &fakeAPI{items: staticPage(items, false)}
	h := loaded(t, fake, 3)

	h.run(h.m.Scroll(30, 20))
	h.advance(readstate.ScrollThrottle)
	assert.Equal(t, []int64{1, 3}, h.m.Pending())
}

func TestSwitchFlushesPendingFirst(t *testing.T) {
	fake := &fakeAPI{}
	h := loaded(t, fake, 4)
	h.run(h.m.Scroll(20, 20))
	h.advance(readstate.ScrollThrottle)
	require.Equal(t, []int64{1, 2}, h.m.Pending())

	fake.calls = nil
	h.run(h.m.SwitchView(FeedView(2), Query{}))

	require.GreaterOrEqual(t, len(fake.calls), 2)
	assert.Equal(t, "MarkItemsRead", fake.calls[0].method)
	assert.Equal(t, []int64{1, 2}, fake.calls[0].ids)
	assert.Equal(t, "ListItems", fake.calls[1].method)
	assert.Empty(t, h.m.Pending())
	assert.False(t, h.m.Viewed(1), "viewed set is scoped to the view")

	h.advance(readstate.FlushDelay)
	assert.Equal(t, 1, fake.count("MarkItemsRead"), "old flush timer is inert")
}

func TestBatchFailureIsNotRetried(t *testing.T) {
	fake := &fakeAPI{markItems: func([]int64) error { return errors.New("503") }}
	h := loaded(t, fake, 4)

	h.run(h.m.Scroll(20, 20))
	h.advance(readstate.ScrollThrottle + readstate.FlushDelay)
	require.Equal(t, 1, fake.count("MarkItemsRead"))

	h.run(h.m.Scroll(40, 20))
	h.advance(readstate.ScrollThrottle + readstate.FlushDelay)

	marks := fake.find("MarkItemsRead")
	require.Len(t, marks, 2)
	assert.Equal(t, []int64{3, 4}, marks[1].ids, "failed ids are not sent again")
	item1, _ := h.m.Item(1)
	assert.True(t, item1.IsUnread)
	_, ok := h.m.Notice()
	assert.False(t, ok, "batched marks fail silently")
	assert.Zero(t, h.kicks)
}

func TestHoverDwellMarksViewed(t *testing.T) {
	fake := &fakeAPI{}
	h := loaded(t, fake, 3)

	h.run(h.m.HoverEnter(3))
	h.advance(readstate.HoverDwell - time.Millisecond)
	assert.Empty(t, h.m.Pending())
	h.advance(time.Millisecond)
	assert.Equal(t, []int64{3}, h.m.Pending())
	assert.True(t, h.m.Viewed(3))
}

func TestHoverLeaveCancelsDwell(t *testing.T) {
	h := loaded(t, &fakeAPI{}, 3)

	h.run(h.m.HoverEnter(2))
	h.advance(time.Second)
	h.m.HoverLeave(2)
	h.advance(time.Second)
	assert.Empty(t, h.m.Pending())

	h.run(h.m.HoverEnter(2))
	h.advance(readstate.HoverDwell)
	assert.Equal(t, []int64{2}, h.m.Pending())
}

func TestHoverAndScrollEmitOnce(t *testing.T) {
	fake := &fakeAPI{}
	h := loaded(t, fake, 3)

	h.run(h.m.HoverEnter(1))
	h.advance(readstate.HoverDwell)
	h.run(h.m.Scroll(20, 20))
	h.advance(readstate.ScrollThrottle)
	h.advance(readstate.FlushDelay)

	marks := fake.find("MarkItemsRead")
	require.Len(t, marks, 1)
	assert.Equal(t, []int64{1, 2}, marks[0].ids)
}

func TestHoverIgnoresReadCards(t *testing.T) {
	items := unread(1, 1, 2)
	items[0].IsUnread = false
	h := loaded(t, &fakeAPI{items: staticPage(items, false)}, 2)
	assert.Nil(t, h.m.HoverEnter(1))
}

func TestExplicitFlush(t *testing.T) {
	fake := &fakeAPI{}
	h := loaded(t, fake, 2)
	h.run(h.m.HoverEnter(2))
	h.advance(readstate.HoverDwell)

	h.run(h.m.Flush())
	assert.Equal(t, 1, fake.count("MarkItemsRead"))
	assert.Nil(t, h.m.Flush(), "nothing pending")
}

func TestAutoLoadMoreAtEnd(t *testing.T) {
	fake := &fakeAPI{items: func(q api.ItemQuery) (api.ItemPage, error) {
		base := int64(q.Page-1) * 3
		return api.ItemPage{Items: unread(1, base+1, base+2, base+3), HasMore: q.Page < 2}, nil
	}}
	h := newHarness(t, fake, func(o *Options) { o.AutoLoadMore = true })
	h.run(h.m.SwitchView(AllItems(), Query{}))
	h.m.SetCards(cards(h.m.Items()))

	h.run(h.m.Scroll(0, 20))
	assert.Equal(t, 1, fake.count("ListItems"), "last card not visible yet")

	h.run(h.m.Scroll(15, 20))
	assert.Equal(t, 2, fake.count("ListItems"))
	assert.Len(t, h.m.Items(), 6)

	h.m.SetAutoLoadMore(false)
	h.m.SetCards(cards(h.m.Items()))
	h.run(h.m.Scroll(50, 20))
	assert.Equal(t, 2, fake.count("ListItems"))
}
