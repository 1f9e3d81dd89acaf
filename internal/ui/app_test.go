package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/engine"
	"github.com/five82/inkwell/internal/prefs"
	"github.com/five82/inkwell/internal/state"
)

// readerServer is a minimal item API. Requests are recorded as
// "METHOD path?query".
type readerServer struct {
	mu           sync.Mutex
	requests     []string
	items        []api.Item
	integrations []api.Integration
	failFavorite bool
}

func newReaderServer(t *testing.T, items []api.Item) (*readerServer, *api.Client) {
	t.Helper()
	s := &readerServer{items: items}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.ItemPage{Items: s.snapshotItems()})
	})
	mux.HandleFunc("GET /api/favorites", func(w http.ResponseWriter, r *http.Request) {
		var favs []api.Item
		for _, it := range s.snapshotItems() {
			if it.IsFavorite {
				favs = append(favs, it)
			}
		}
		writeJSON(w, api.ItemPage{Items: favs})
	})
	mux.HandleFunc("GET /api/integrations", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, map[string]any{"integrations": s.integrations})
	})
	mux.HandleFunc("POST /api/items/read", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/items/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/items/{id}/favorite", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failFavorite
		s.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]string{"error": "database locked"})
			return
		}
		writeJSON(w, map[string]bool{"is_favorite": true})
	})
	mux.HandleFunc("POST /api/integrations/{id}/execute", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.ExecutionResult{Status: http.StatusOK})
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		entry := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			entry += "?" + r.URL.RawQuery
		}
		s.requests = append(s.requests, entry)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return s, client
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *readerServer) snapshotItems() []api.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Item(nil), s.items...)
}

func (s *readerServer) saw(entry string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r == entry {
			return true
		}
	}
	return false
}

func (s *readerServer) last(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if len(s.requests[i]) >= len(prefix) && s.requests[i][:len(prefix)] == prefix {
			return s.requests[i]
		}
	}
	return ""
}

func sampleItems(n int) []api.Item {
	items := make([]api.Item, 0, n)
	for id := 1; id <= n; id++ {
		items = append(items, api.Item{
			ID:        int64(id),
			FeedID:    1,
			FeedTitle: "Go blog",
			Title:     fmt.Sprintf("Post %d", id),
			URL:       fmt.Sprintf("https://blog.example/%d", id),
			Summary:   "<p>Short summary.</p>",
			IsUnread:  true,
		})
	}
	return items
}

type testUI struct {
	t      *testing.T
	m      Model
	opened []string
	copied []string
}

// newTestUI returns a loaded 120x40 model. Engine timers are dropped so
// every command the test runs completes immediately.
func newTestUI(t *testing.T, client *api.Client, configure ...func(*Options)) *testUI {
	t.Helper()
	eng := engine.New(engine.Options{
		API:   client,
		After: func(time.Duration, tea.Msg) tea.Cmd { return nil },
	})
	opts := Options{Engine: eng, Prefs: prefs.Default()}
	for _, fn := range configure {
		fn(&opts)
	}

	u := &testUI{t: t}
	u.m = New(opts)
	u.m.openURL = func(url string) error {
		u.opened = append(u.opened, url)
		return nil
	}
	u.m.copyText = func(text string) error {
		u.copied = append(u.copied, text)
		return nil
	}
	u.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	u.drive(eng.Init())
	return u
}

func (u *testUI) send(msg tea.Msg) {
	u.t.Helper()
	next, cmd := u.m.Update(msg)
	u.m = next.(Model)
	u.drive(cmd)
}

// drive runs cmd and feeds every resulting message back through Update.
func (u *testUI) drive(cmd tea.Cmd) {
	u.t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		next, out := u.m.Update(msg)
		u.m = next.(Model)
		queue = append(queue, out)
	}
}

func (u *testUI) press(keys ...string) {
	u.t.Helper()
	for _, k := range keys {
		u.send(keyMsg(k))
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestLoadsItemsOnStart(t *testing.T) {
	srv, client := newReaderServer(t, sampleItems(3))
	u := newTestUI(t, client)

	if got := len(u.m.engine.Items()); got != 3 {
		t.Fatalf("items = %d, want 3", got)
	}
	if len(u.m.layout.cards) != 3 {
		t.Fatalf("cards = %d, want 3", len(u.m.layout.cards))
	}
	if !srv.saw("GET /api/items?page=1&per_page=30&sort=newest") {
		t.Fatalf("initial fetch missing, requests = %v", srv.requests)
	}
	if out := u.m.View(); out == "" || out == "Loading..." {
		t.Fatalf("View() = %q, want rendered main view", out)
	}
}

func TestNavigationScrollsSelectionIntoView(t *testing.T) {
	_, client := newReaderServer(t, sampleItems(20))
	u := newTestUI(t, client)

	u.press("G")
	if u.m.selected != 19 {
		t.Fatalf("selected = %d, want 19", u.m.selected)
	}
	last := u.m.layout.cards[19]
	if u.m.offset == 0 || last.Top < u.m.offset || last.Bottom >= u.m.offset+u.m.listHeight() {
		t.Fatalf("offset = %d does not show rows %d-%d", u.m.offset, last.Top, last.Bottom)
	}

	u.press("g")
	if u.m.selected != 0 || u.m.offset != 0 {
		t.Fatalf("selected=%d offset=%d, want 0 0", u.m.selected, u.m.offset)
	}

	u.press("j", "j")
	if u.m.selected != 2 {
		t.Fatalf("selected = %d, want 2", u.m.selected)
	}
}

func TestFavoriteKeyUpdatesItem(t *testing.T) {
	srv, client := newReaderServer(t, sampleItems(2))
	u := newTestUI(t, client)

	u.press("f")
	if !srv.saw("POST /api/items/1/favorite") {
		t.Fatalf("favorite request missing, requests = %v", srv.requests)
	}
	item, _ := u.m.engine.Item(1)
	if !item.IsFavorite {
		t.Fatalf("item 1 not favorited")
	}
	if u.m.modal != nil {
		t.Fatalf("unexpected modal %T", u.m.modal)
	}
}

func TestFailedFavoriteShowsNotice(t *testing.T) {
	srv, client := newReaderServer(t, sampleItems(2))
	u := newTestUI(t, client)
	srv.mu.Lock()
	srv.failFavorite = true
	srv.mu.Unlock()

	u.press("f")
	item, _ := u.m.engine.Item(1)
	if item.IsFavorite {
		t.Fatalf("favorite not rolled back")
	}
	notice, ok := u.m.modal.(*noticeModal)
	if !ok {
		t.Fatalf("modal = %T, want *noticeModal", u.m.modal)
	}
	if notice.notice.Status != http.StatusInternalServerError || notice.notice.Detail != "database locked" {
		t.Fatalf("notice = %+v", notice.notice)
	}

	u.press("enter")
	if u.m.modal != nil {
		t.Fatalf("modal still open after dismiss")
	}
	if _, pending := u.m.engine.Notice(); pending {
		t.Fatalf("notice not acknowledged")
	}
}

func TestOpenMarksReadAndOpensBrowser(t *testing.T) {
	srv, client := newReaderServer(t, sampleItems(2))
	u := newTestUI(t, client)

	u.press("j", "enter")
	if len(u.opened) != 1 || u.opened[0] != "https://blog.example/2" {
		t.Fatalf("opened = %v", u.opened)
	}
	if !srv.saw("POST /api/items/2/read") {
		t.Fatalf("mark read request missing, requests = %v", srv.requests)
	}
	if item, _ := u.m.engine.Item(2); item.IsUnread {
		t.Fatalf("item 2 still unread")
	}
	if u.m.status != "Opened in browser" {
		t.Fatalf("status = %q", u.m.status)
	}
}

func TestOpenFallsBackToClipboard(t *testing.T) {
	_, client := newReaderServer(t, sampleItems(1))
	u := newTestUI(t, client)
	u.m.openURL = func(string) error { return errors.New("xdg-open not found") }

	u.press("o")
	if len(u.copied) != 1 || u.copied[0] != "https://blog.example/1" {
		t.Fatalf("copied = %v", u.copied)
	}
	if u.m.status != "No browser available, link copied" {
		t.Fatalf("status = %q", u.m.status)
	}
}

func TestSidebarSwitchesToFeed(t *testing.T) {
	srv, client := newReaderServer(t, sampleItems(2))
	store := &state.Store{}
	store.Update(&api.FeedList{
		Feeds:       []api.Feed{{ID: 7, Title: "Go blog", UnreadCount: 2}},
		TotalUnread: 2,
	}, nil)
	u := newTestUI(t, client, func(o *Options) { o.Store = store })

	u.press("tab", "j", "j", "enter")
	if got := u.m.engine.View(); got != engine.FeedView(7) {
		t.Fatalf("view = %v, want feed:7", got)
	}
	if !srv.saw("GET /api/items?feed_id=7&page=1&per_page=30&sort=newest") {
		t.Fatalf("feed fetch missing, requests = %v", srv.requests)
	}
	if u.m.focus != paneCards {
		t.Fatalf("focus = %v, want cards", u.m.focus)
	}
	if label := u.m.viewLabel(); label != "Go blog" {
		t.Fatalf("viewLabel = %q", label)
	}
}

func TestUnreadToggleIsSavedPerView(t *testing.T) {
	srv, client := newReaderServer(t, sampleItems(2))
	path := filepath.Join(t.TempDir(), "prefs.toml")
	u := newTestUI(t, client, func(o *Options) { o.PrefsPath = path })

	u.press("u")
	if got := srv.last("GET /api/items"); got != "GET /api/items?page=1&per_page=30&sort=newest&unread=1" {
		t.Fatalf("last fetch = %q", got)
	}
	saved, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !saved.UnreadOnlyFor(prefs.ViewAll) {
		t.Fatalf("unread filter not saved for all items")
	}
	if saved.UnreadOnlyFor(prefs.ViewFavorites) {
		t.Fatalf("unread filter leaked to favorites")
	}
}

func TestMouseHoverTracksCard(t *testing.T) {
	_, client := newReaderServer(t, sampleItems(3))
	u := newTestUI(t, client)

	x := u.m.listLeft() + 2
	u.send(tea.MouseMsg{X: x, Y: headerHeight, Action: tea.MouseActionMotion})
	if u.m.hovered != 1 {
		t.Fatalf("hovered = %d, want 1", u.m.hovered)
	}

	second := u.m.layout.cards[1]
	u.send(tea.MouseMsg{X: x, Y: headerHeight + second.Top, Action: tea.MouseActionMotion})
	if u.m.hovered != 2 {
		t.Fatalf("hovered = %d, want 2", u.m.hovered)
	}

	u.send(tea.MouseMsg{X: 0, Y: headerHeight, Action: tea.MouseActionMotion})
	if u.m.hovered != 0 {
		t.Fatalf("hovered = %d, want 0 over the sidebar", u.m.hovered)
	}
}

func TestIntegrationPickerExecutes(t *testing.T) {
	srv, client := newReaderServer(t, sampleItems(1))
	srv.mu.Lock()
	srv.integrations = []api.Integration{{ID: 4, Name: "Pocket", Kind: api.IntegrationURL}}
	srv.mu.Unlock()
	u := newTestUI(t, client)

	u.press("i")
	if _, ok := u.m.modal.(*integrationPicker); !ok {
		t.Fatalf("modal = %T, want *integrationPicker", u.m.modal)
	}
	u.press("1")
	if u.m.modal != nil {
		t.Fatalf("picker still open")
	}
	if !srv.saw("POST /api/integrations/4/execute") {
		t.Fatalf("execute request missing, requests = %v", srv.requests)
	}
	toasts := u.m.engine.Toasts()
	if len(toasts) != 1 || toasts[0].Failed {
		t.Fatalf("toasts = %+v", toasts)
	}
}

func TestIntegrationKeyWithoutIntegrations(t *testing.T) {
	_, client := newReaderServer(t, sampleItems(1))
	u := newTestUI(t, client)

	u.press("i")
	if u.m.modal != nil {
		t.Fatalf("modal = %T, want none", u.m.modal)
	}
	if u.m.status != "No integrations configured" {
		t.Fatalf("status = %q", u.m.status)
	}
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	_, client := newReaderServer(t, nil)
	u := newTestUI(t, client)

	u.press("?")
	if !u.m.showHelp {
		t.Fatalf("help not shown")
	}
	u.press("j")
	if u.m.showHelp {
		t.Fatalf("help still shown")
	}
}

func TestSidebarToggleMovesFocus(t *testing.T) {
	_, client := newReaderServer(t, nil)
	u := newTestUI(t, client)

	u.press("tab")
	if u.m.focus != paneSidebar {
		t.Fatalf("focus = %v, want sidebar", u.m.focus)
	}
	u.press("b")
	if u.m.sidebarVisible() || u.m.focus != paneCards {
		t.Fatalf("sidebar visible=%v focus=%v", u.m.sidebarVisible(), u.m.focus)
	}
	if u.m.listLeft() != 0 {
		t.Fatalf("listLeft = %d, want 0", u.m.listLeft())
	}
}
