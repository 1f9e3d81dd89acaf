package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/history"
	"github.com/five82/inkwell/internal/readstate"
)

// API is the subset of the remote store client the engine drives.
type API interface {
	ListItems(ctx context.Context, q api.ItemQuery) (api.ItemPage, error)
	ListFavorites(ctx context.Context, q api.ItemQuery) (api.ItemPage, error)
	MarkItemRead(ctx context.Context, id int64) error
	MarkItemsRead(ctx context.Context, ids []int64) error
	MarkFeedRead(ctx context.Context, feedID int64) error
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
	RefreshThumbnail(ctx context.Context, id int64) (string, error)
	CreateFeed(ctx context.Context, in api.FeedInput) (api.Feed, error)
	UpdateFeed(ctx context.Context, id int64, in api.FeedInput) (api.Feed, error)
	DeleteFeed(ctx context.Context, id int64) error
	ListIntegrations(ctx context.Context) ([]api.Integration, error)
	CreateIntegration(ctx context.Context, in api.IntegrationInput) (api.Integration, error)
	UpdateIntegration(ctx context.Context, id int64, in api.IntegrationInput) (api.Integration, error)
	DeleteIntegration(ctx context.Context, id int64) error
	ExecuteIntegration(ctx context.Context, id int64, itemURL, title string) (api.ExecutionResult, error)
}

// FeedStore holds the feed list shown in the sidebar.
type FeedStore interface {
	Feed(id int64) (api.Feed, bool)
	PutFeed(feed api.Feed) (api.Feed, bool)
	RemoveFeed(id int64) (api.Feed, int, bool)
	RestoreFeed(feed api.Feed, index int)
}

// Refresher schedules an aggregate unread count refresh.
type Refresher interface {
	Kick()
}

// Recorder persists integration executions.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Prober discovers a feed's title from its URL.
type Prober interface {
	Title(ctx context.Context, feedURL string) (string, error)
}

// ViewKind selects which items are listed.
type ViewKind int

const (
	ViewAll ViewKind = iota
	ViewFeed
	ViewFavorites
)

// View is the current feed selection.
type View struct {
	Kind   ViewKind
	FeedID int64
}

// AllItems is the unscoped view.
func AllItems() View { return View{Kind: ViewAll} }

// FeedView scopes the list to one feed.
func FeedView(id int64) View { return View{Kind: ViewFeed, FeedID: id} }

// Favorites lists favorited items.
func Favorites() View { return View{Kind: ViewFavorites} }

func (v View) String() string {
	switch v.Kind {
	case ViewFeed:
		return fmt.Sprintf("feed:%d", v.FeedID)
	case ViewFavorites:
		return "favorites"
	default:
		return "all"
	}
}

// Query holds the paging and filter parameters of a view.
type Query struct {
	Sort       string
	UnreadOnly bool
	PerPage    int
}

const defaultPerPage = 30

func (q Query) normalize() Query {
	if q.Sort != api.SortOldest {
		q.Sort = api.SortNewest
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	return q
}

// Options configures a Model.
type Options struct {
	Context context.Context
	API     API
	Feeds   FeedStore
	Counts  Refresher
	History Recorder
	Prober  Prober
	Logger  *slog.Logger

	// RefreshEvery is the silent refresh cadence; zero disables it.
	RefreshEvery time.Duration
	AutoLoadMore bool

	View  View
	Query Query

	// After delivers msg once d has passed. It defaults to tea.Tick.
	After func(d time.Duration, msg tea.Msg) tea.Cmd
}

// Model is the read-state engine. It is a Bubble Tea sub-model: intents and
// Update return commands for the host program to run, and every field is
// owned by the goroutine running the program loop.
type Model struct {
	ctx     context.Context
	api     API
	feeds   FeedStore
	counts  Refresher
	history Recorder
	prober  Prober
	log     *slog.Logger

	refreshEvery time.Duration
	autoLoad     bool

	now   func() time.Time
	after func(time.Duration, tea.Msg) tea.Cmd

	guard    readstate.Guard
	list     readstate.List
	observer *readstate.Observer
	batch    readstate.Batcher

	view    View
	query   Query
	session uint64
	viewed  map[int64]struct{}

	// refreshLoop identifies the live silent refresh interval. refreshGen is
	// the generation of the refresh in flight, and refreshSkip holds the ids
	// whose unread flag changed locally since it was issued.
	refreshLoop uint64
	refreshGen  uint64
	refreshSkip map[int64]struct{}

	page          int
	hasMore       bool
	loading       bool
	loadErr       error
	contentBottom int

	thumbs      map[int64]int
	thumbFailed map[int64]bool

	integrations []api.Integration
	notices      []Notice
	toasts       []Toast
	toastSeq     uint64
}

// New returns a Model. Nothing is fetched until Init.
func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	after := opts.After
	if after == nil {
		after = tick
	}
	return &Model{
		ctx:          ctx,
		api:          opts.API,
		feeds:        opts.Feeds,
		counts:       opts.Counts,
		history:      opts.History,
		prober:       opts.Prober,
		log:          logger,
		refreshEvery: opts.RefreshEvery,
		autoLoad:     opts.AutoLoadMore,
		now:          time.Now,
		after:        after,
		observer:     readstate.NewObserver(),
		view:         opts.View,
		query:        opts.Query.normalize(),
		viewed:       make(map[int64]struct{}),
		thumbs:       make(map[int64]int),
		thumbFailed:  make(map[int64]bool),
	}
}

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Init starts the first session and loads integrations.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.SwitchView(m.view, m.query), m.LoadIntegrations())
}

// Update handles the engine's own messages. Other messages are ignored.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case itemsMsg:
		return m.handleItems(msg)
	case refreshTickMsg:
		return m.handleRefreshTick(msg)
	case scrollEvalMsg:
		if msg.session != m.session {
			return nil
		}
		return m.markSeen(m.observer.ThrottleElapsed(m.now()))
	case catchUpMsg:
		if msg.session != m.session {
			return nil
		}
		return m.markSeen(m.observer.Evaluate(m.now()))
	case dwellMsg:
		return m.handleDwell(msg)
	case flushTimerMsg:
		if !m.batch.TimerFired(msg.token) {
			return nil
		}
		return m.flush()
	case marksDoneMsg:
		m.handleMarksDone(msg)
		return nil
	case mutationMsg:
		m.handleMutation(msg)
		return nil
	case feedSavedMsg:
		return m.handleFeedSaved(msg)
	case integrationsMsg:
		m.handleIntegrations(msg)
		return nil
	case integrationSavedMsg:
		return m.handleIntegrationSaved(msg)
	case executedMsg:
		return m.handleExecuted(msg)
	case toastExpireMsg:
		m.expireToast(msg.id)
		return nil
	}
	return nil
}

// Items returns the loaded items in display order. The slice must not be
// modified.
func (m *Model) Items() []api.Item { return m.list.Items() }

// Item returns a loaded item.
func (m *Model) Item(id int64) (api.Item, bool) { return m.list.Get(id) }

// View returns the current feed selection.
func (m *Model) View() View { return m.view }

// Query returns the current paging and filter parameters.
func (m *Model) Query() Query { return m.query }

// Page returns the last page loaded.
func (m *Model) Page() int { return m.page }

// HasMore reports whether another page is available.
func (m *Model) HasMore() bool { return m.hasMore }

// Loading reports whether a user-initiated fetch is outstanding.
func (m *Model) Loading() bool { return m.loading }

// Err returns the error of the last list fetch, if it failed.
func (m *Model) Err() error { return m.loadErr }

// Generation returns the latest fetch generation.
func (m *Model) Generation() uint64 { return m.guard.Current() }

// Pending returns ids waiting for the next batched mark.
func (m *Model) Pending() []int64 { return m.batch.Pending() }

// Viewed reports whether id was seen in the current session.
func (m *Model) Viewed(id int64) bool {
	_, ok := m.viewed[id]
	return ok
}

// Integrations returns the loaded integrations.
func (m *Model) Integrations() []api.Integration { return m.integrations }

// SetAutoLoadMore toggles loading the next page when the end of the list
// scrolls into view.
func (m *Model) SetAutoLoadMore(on bool) { m.autoLoad = on }
