package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/engine"
	"github.com/five82/inkwell/internal/prefs"
	"github.com/five82/inkwell/internal/state"
)

// pane identifies which column has keyboard focus.
type pane int

const (
	paneCards pane = iota
	paneSidebar
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Engine    *engine.Model
	Store     *state.Store
	Prefs     prefs.Prefs
	PrefsPath string
	PollTick  time.Duration
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	engine    *engine.Model
	store     *state.Store
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	log       *slog.Logger
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool
	focus  pane

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Sidebar state
	sidebarRow int

	// Card list state
	layout   cardLayout
	selected int
	offset   int
	hovered  int64

	// Overlays
	modal    Modal
	showHelp bool
	status   string

	openURL  func(string) error
	copyText func(string) error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	eng := opts.Engine
	if eng == nil {
		eng = engine.New(engine.Options{Context: ctx, Logger: logger})
	}

	return Model{
		ctx:       ctx,
		engine:    eng,
		store:     opts.Store,
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		pollTick:  pollTick,
		log:       logger,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		openURL:   openBrowser,
		copyText:  copyToClipboard,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		m.engine.Init(),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, cmd := m.handleKey(msg)
		return next.settle(cmd)

	case tea.MouseMsg:
		next, cmd := m.handleMouse(msg)
		return next.settle(cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m.settle(m.engine.Scroll(m.offset, m.listHeight()))

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampSidebar()
		return m, nil

	case feedSubmitMsg:
		return m.settle(m.submitFeed(msg))

	case feedDeleteMsg:
		if v := m.engine.View(); v.Kind == engine.ViewFeed && v.FeedID == msg.id {
			m.resetList()
		}
		return m.settle(m.engine.DeleteFeed(msg.id))

	case integrationPickMsg:
		return m.settle(m.engine.ExecuteIntegration(msg.integrationID, msg.itemID))

	case actionDoneMsg:
		if msg.err != nil {
			m.log.Warn(msg.action+" failed", "error", msg.err)
			m.status = msg.action + " failed"
		} else {
			m.status = msg.done
		}
		return m, nil
	}

	return m.settle(m.engine.Update(msg))
}

// settle re-derives everything that depends on engine state after a message:
// card geometry, the visible selection and any notice waiting to be shown.
func (m Model) settle(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if !m.ready {
		return m, cmd
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
		m.clampSidebar()
	}
	m.relayout()
	if m.modal == nil {
		if notice, ok := m.engine.Notice(); ok {
			m.modal = newNoticeModal(notice)
		}
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.renderModal()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Sequence(m.engine.Flush(), tea.Quit)

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.focus == paneCards && !m.prefs.SidebarCollapsed {
			m.focus = paneSidebar
		} else {
			m.focus = paneCards
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.prefs.SidebarCollapsed = !m.prefs.SidebarCollapsed
		if m.prefs.SidebarCollapsed {
			m.focus = paneCards
		}
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewAll):
		cmd := m.switchTo(engine.AllItems())
		return m, cmd

	case key.Matches(msg, m.keys.ViewFavorites):
		cmd := m.switchTo(engine.Favorites())
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		m.resetList()
		return m, m.engine.Reload()

	case key.Matches(msg, m.keys.UnreadOnly):
		cmd := m.toggleUnreadOnly()
		return m, cmd

	case key.Matches(msg, m.keys.Sort):
		cmd := m.toggleSort()
		return m, cmd

	case key.Matches(msg, m.keys.AutoLoad):
		m.prefs.AutoLoadMore = !m.prefs.AutoLoadMore
		m.engine.SetAutoLoadMore(m.prefs.AutoLoadMore)
		m.status = ternary(m.prefs.AutoLoadMore, "Auto-load on", "Auto-load off")
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Wider):
		m.resizeColumn(columnStep)
		return m, nil

	case key.Matches(msg, m.keys.Narrower):
		m.resizeColumn(-columnStep)
		return m, nil

	case key.Matches(msg, m.keys.AddFeed):
		m.modal = newFeedForm(api.Feed{})
		return m, nil

	case key.Matches(msg, m.keys.ToggleToast):
		if t, ok := m.latestToast(); ok {
			return m, m.engine.ToggleToast(t.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.DismissToast):
		if t, ok := m.latestToast(); ok {
			m.engine.DismissToast(t.ID)
		}
		return m, nil
	}

	if m.focus == paneSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleCardKey(msg)
}

// handleCardKey processes keyboard input for the card list.
func (m Model) handleCardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.engine.Items()

	switch {
	case key.Matches(msg, m.keys.Down):
		cmd := m.selectCard(m.selected + 1)
		return m, cmd
	case key.Matches(msg, m.keys.Up):
		cmd := m.selectCard(m.selected - 1)
		return m, cmd
	case key.Matches(msg, m.keys.Top):
		cmd := m.selectCard(0)
		return m, cmd
	case key.Matches(msg, m.keys.Bottom):
		cmd := m.selectCard(len(items) - 1)
		return m, cmd
	case key.Matches(msg, m.keys.PageDown):
		cmd := m.scrollBy(m.listHeight())
		return m, cmd
	case key.Matches(msg, m.keys.PageUp):
		cmd := m.scrollBy(-m.listHeight())
		return m, cmd
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.engine.LoadMore()
	case key.Matches(msg, m.keys.MarkAll):
		return m, m.engine.MarkAllRead()
	}

	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		return m, tea.Batch(m.engine.MarkRead(item.ID), m.openCmd(item.URL))
	case key.Matches(msg, m.keys.CopyLink):
		return m, m.copyCmd(item.URL)
	case key.Matches(msg, m.keys.Favorite):
		return m, m.engine.ToggleFavorite(item.ID)
	case key.Matches(msg, m.keys.MarkRead):
		return m, m.engine.MarkRead(item.ID)
	case key.Matches(msg, m.keys.Thumbnail):
		if !m.engine.CanRetryThumbnail(item.ID) {
			m.status = "Thumbnail retries exhausted"
			return m, nil
		}
		return m, m.engine.RefreshThumbnail(item.ID)
	case key.Matches(msg, m.keys.Integration):
		integrations := m.engine.Integrations()
		if len(integrations) == 0 {
			m.status = "No integrations configured"
			return m, nil
		}
		m.modal = newIntegrationPicker(item, integrations)
		return m, nil
	}

	return m, nil
}

func (m Model) updateModal(msg tea.Msg) (Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if !closed {
		m.modal = next
		return m, cmd
	}
	if _, ok := m.modal.(*noticeModal); ok {
		m.engine.DismissNotice()
	}
	m.modal = nil
	return m, cmd
}

// switchTo changes the feed selection using the stored preferences for it.
func (m *Model) switchTo(v engine.View) tea.Cmd {
	m.resetList()
	m.focus = paneCards
	m.sidebarRow = m.sidebarIndex(v)
	cmd := m.engine.SwitchView(v, m.queryFor(v))
	return tea.Batch(cmd, m.engine.Scroll(0, m.listHeight()))
}

func (m Model) queryFor(v engine.View) engine.Query {
	return engine.Query{
		Sort:       m.prefs.SortOrder,
		UnreadOnly: m.prefs.UnreadOnlyFor(viewKey(v)),
		PerPage:    m.prefs.ItemsPerPage,
	}
}

func (m *Model) toggleUnreadOnly() tea.Cmd {
	v := m.engine.View()
	name := viewKey(v)
	m.prefs.SetUnreadOnly(name, !m.prefs.UnreadOnlyFor(name))
	m.savePrefs()
	m.resetList()
	return m.engine.SetQuery(m.queryFor(v))
}

func (m *Model) toggleSort() tea.Cmd {
	m.prefs.SortOrder = ternary(m.prefs.SortOrder == "oldest", "newest", "oldest")
	m.savePrefs()
	m.resetList()
	return m.engine.SetQuery(m.queryFor(m.engine.View()))
}

func (m *Model) resizeColumn(delta int) {
	feedID := m.engine.View().FeedID
	m.prefs.SetWidth(feedID, m.prefs.WidthFor(feedID)+delta)
	m.savePrefs()
}

func (m *Model) submitFeed(msg feedSubmitMsg) tea.Cmd {
	if msg.id == 0 {
		return m.engine.CreateFeed(msg.input)
	}
	return m.engine.UpdateFeed(msg.id, msg.input)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("save prefs failed", "error", err)
	}
}

func (m Model) latestToast() (engine.Toast, bool) {
	toasts := m.engine.Toasts()
	if len(toasts) == 0 {
		return engine.Toast{}, false
	}
	return toasts[len(toasts)-1], true
}

// viewKey maps a view to its preference key.
func viewKey(v engine.View) string {
	switch v.Kind {
	case engine.ViewFeed:
		return prefs.FeedKey(v.FeedID)
	case engine.ViewFavorites:
		return prefs.ViewFavorites
	default:
		return prefs.ViewAll
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// actionDoneMsg reports a local side effect such as opening a browser.
type actionDoneMsg struct {
	action string
	done   string
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program. Mouse motion is reported so hovering a
// card counts toward marking it read.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(m.ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
