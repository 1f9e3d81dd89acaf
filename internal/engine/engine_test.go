package engine

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/history"
	"github.com/five82/inkwell/internal/readstate"
)

var epoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type call struct {
	method string
	ids    []int64
	query  api.ItemQuery
}

// fakeAPI records every call. Unset hooks succeed with zero values.
type fakeAPI struct {
	calls []call

	items        func(q api.ItemQuery) (api.ItemPage, error)
	favorites    func(q api.ItemQuery) (api.ItemPage, error)
	markItem     func(id int64) error
	markItems    func(ids []int64) error
	markFeed     func(feedID int64) error
	favorite     func(id int64) (bool, error)
	thumbnail    func(id int64) (string, error)
	createFeed   func(in api.FeedInput) (api.Feed, error)
	updateFeed   func(id int64, in api.FeedInput) (api.Feed, error)
	deleteFeed   func(id int64) error
	integrations []api.Integration
	saveErr      error
	execute      func(id int64, itemURL, title string) (api.ExecutionResult, error)
}

func (f *fakeAPI) record(method string, ids ...int64) {
	f.calls = append(f.calls, call{method: method, ids: ids})
}

// count returns how many times method was called.
func (f *fakeAPI) count(method string) int {
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

// find returns the calls to method in order.
func (f *fakeAPI) find(method string) []call {
	var out []call
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) ListItems(_ context.Context, q api.ItemQuery) (api.ItemPage, error) {
	f.calls = append(f.calls, call{method: "ListItems", query: q})
	if f.items == nil {
		return api.ItemPage{}, nil
	}
	return f.items(q)
}

func (f *fakeAPI) ListFavorites(_ context.Context, q api.ItemQuery) (api.ItemPage, error) {
	f.calls = append(f.calls, call{method: "ListFavorites", query: q})
	if f.favorites == nil {
		return api.ItemPage{}, nil
	}
	return f.favorites(q)
}

func (f *fakeAPI) MarkItemRead(_ context.Context, id int64) error {
	f.record("MarkItemRead", id)
	if f.markItem == nil {
		return nil
	}
	return f.markItem(id)
}

func (f *fakeAPI) MarkItemsRead(_ context.Context, ids []int64) error {
	f.record("MarkItemsRead", ids...)
	if f.markItems == nil {
		return nil
	}
	return f.markItems(ids)
}

func (f *fakeAPI) MarkFeedRead(_ context.Context, feedID int64) error {
	f.record("MarkFeedRead", feedID)
	if f.markFeed == nil {
		return nil
	}
	return f.markFeed(feedID)
}

func (f *fakeAPI) ToggleFavorite(_ context.Context, id int64) (bool, error) {
	f.record("ToggleFavorite", id)
	if f.favorite == nil {
		return true, nil
	}
	return f.favorite(id)
}

func (f *fakeAPI) RefreshThumbnail(_ context.Context, id int64) (string, error) {
	f.record("RefreshThumbnail", id)
	if f.thumbnail == nil {
		return "https://img.example/new.png", nil
	}
	return f.thumbnail(id)
}

func (f *fakeAPI) CreateFeed(_ context.Context, in api.FeedInput) (api.Feed, error) {
	f.record("CreateFeed")
	if f.createFeed == nil {
		return api.Feed{ID: 100, Title: in.Title, URL: in.URL}, nil
	}
	return f.createFeed(in)
}

func (f *fakeAPI) UpdateFeed(_ context.Context, id int64, in api.FeedInput) (api.Feed, error) {
	f.record("UpdateFeed", id)
	if f.updateFeed == nil {
		return api.Feed{ID: id, Title: in.Title, URL: in.URL, IntegrationIDs: in.IntegrationIDs}, nil
	}
	return f.updateFeed(id, in)
}

func (f *fakeAPI) DeleteFeed(_ context.Context, id int64) error {
	f.record("DeleteFeed", id)
	if f.deleteFeed == nil {
		return nil
	}
	return f.deleteFeed(id)
}

func (f *fakeAPI) ListIntegrations(context.Context) ([]api.Integration, error) {
	f.record("ListIntegrations")
	return f.integrations, nil
}

func (f *fakeAPI) CreateIntegration(_ context.Context, in api.IntegrationInput) (api.Integration, error) {
	f.record("CreateIntegration")
	if f.saveErr != nil {
		return api.Integration{}, f.saveErr
	}
	created := api.Integration{ID: int64(len(f.integrations) + 1), Name: in.Name, Kind: in.Kind, Template: in.Template}
	f.integrations = append(f.integrations, created)
	return created, nil
}

func (f *fakeAPI) UpdateIntegration(_ context.Context, id int64, in api.IntegrationInput) (api.Integration, error) {
	f.record("UpdateIntegration", id)
	if f.saveErr != nil {
		return api.Integration{}, f.saveErr
	}
	return api.Integration{ID: id, Name: in.Name, Kind: in.Kind, Template: in.Template}, nil
}

func (f *fakeAPI) DeleteIntegration(_ context.Context, id int64) error {
	f.record("DeleteIntegration", id)
	return f.saveErr
}

func (f *fakeAPI) ExecuteIntegration(_ context.Context, id int64, itemURL, title string) (api.ExecutionResult, error) {
	f.record("ExecuteIntegration", id)
	if f.execute == nil {
		return api.ExecutionResult{Status: 200, Detail: "ok"}, nil
	}
	return f.execute(id, itemURL, title)
}

type fakeProber struct {
	title string
	err   error
	urls  []string
}

func (p *fakeProber) Title(_ context.Context, feedURL string) (string, error) {
	p.urls = append(p.urls, feedURL)
	return p.title, p.err
}

type fakeRecorder struct {
	entries []history.Entry
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, e history.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

type scheduled struct {
	due time.Time
	msg tea.Msg
}

// harness drives a Model without a Bubble Tea program. Commands are executed
// inline and timers are queued against a fake clock.
type harness struct {
	t      *testing.T
	m      *Model
	api    *fakeAPI
	now    time.Time
	timers []scheduled
	kicks  int
}

func (h *harness) Kick() { h.kicks++ }

func newHarness(t *testing.T, fake *fakeAPI, configure ...func(*Options)) *harness {
	t.Helper()
	h := &harness{t: t, api: fake, now: epoch}
	opts := Options{API: fake, Counts: h}
	for _, fn := range configure {
		fn(&opts)
	}
	h.m = New(opts)
	h.m.now = func() time.Time { return h.now }
	h.m.after = func(d time.Duration, msg tea.Msg) tea.Cmd {
		h.timers = append(h.timers, scheduled{due: h.now.Add(d), msg: msg})
		return nil
	}
	return h
}

// exec runs cmd and any batched children, returning the resulting messages
// without delivering them.
func (h *harness) exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, h.exec(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// send delivers msgs and runs whatever they produce.
func (h *harness) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		h.run(h.m.Update(msg))
	}
}

func (h *harness) run(cmd tea.Cmd) {
	h.send(h.exec(cmd)...)
}

// advance moves the clock forward by d, delivering due timers in order.
func (h *harness) advance(d time.Duration) {
	target := h.now.Add(d)
	for {
		next := -1
		for i, s := range h.timers {
			if s.due.After(target) {
				continue
			}
			if next < 0 || s.due.Before(h.timers[next].due) {
				next = i
			}
		}
		if next < 0 {
			break
		}
		s := h.timers[next]
		h.timers = append(h.timers[:next], h.timers[next+1:]...)
		h.now = s.due
		h.send(s.msg)
	}
	h.now = target
}

// unread builds unread items of one feed.
func unread(feedID int64, ids ...int64) []api.Item {
	out := make([]api.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, api.Item{
			ID:       id,
			FeedID:   feedID,
			Title:    "item",
			URL:      "https://example.com/item",
			IsUnread: true,
		})
	}
	return out
}

func idsOf(items []api.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// cards lays out one card of height 10 per loaded item.
func cards(items []api.Item) []readstate.Card {
	out := make([]readstate.Card, 0, len(items))
	for i, it := range items {
		out = append(out, readstate.Card{ID: it.ID, Top: i * 10, Bottom: i*10 + 9})
	}
	return out
}

func staticPage(items []api.Item, hasMore bool) func(api.ItemQuery) (api.ItemPage, error) {
	return func(api.ItemQuery) (api.ItemPage, error) {
		return api.ItemPage{Items: items, HasMore: hasMore}, nil
	}
}

func TestNewDefaults(t *testing.T) {
	m := New(Options{})
	assert.Equal(t, AllItems(), m.View())
	assert.Equal(t, api.SortNewest, m.Query().Sort)
	assert.Equal(t, defaultPerPage, m.Query().PerPage)
	assert.Nil(t, m.LoadMore())
	assert.Nil(t, m.LoadIntegrations(), "nothing to load without a client")
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "all", AllItems().String())
	assert.Equal(t, "feed:7", FeedView(7).String())
	assert.Equal(t, "favorites", Favorites().String())
}

func TestInitLoadsItemsAndIntegrations(t *testing.T) {
	fake := &fakeAPI{
		items:        staticPage(unread(1, 1, 2, 3), true),
		integrations: []api.Integration{{ID: 1, Name: "Pocket"}},
	}
	h := newHarness(t, fake)
	h.run(h.m.Init())

	assert.Equal(t, []int64{1, 2, 3}, idsOf(h.m.Items()))
	assert.True(t, h.m.HasMore())
	assert.Equal(t, 1, h.m.Page())
	assert.False(t, h.m.Loading())
	assert.Len(t, h.m.Integrations(), 1)
}

func TestUnknownMessageIgnored(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	assert.Nil(t, h.m.Update(tea.KeyMsg{}))
}
