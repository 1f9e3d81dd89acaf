package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit          key.Binding
	Help          key.Binding
	CycleTheme    key.Binding
	Tab           key.Binding
	Escape        key.Binding
	ToggleSidebar key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Views
	ViewAll       key.Binding
	ViewFavorites key.Binding
	Select        key.Binding

	// Items
	Open        key.Binding
	CopyLink    key.Binding
	Favorite    key.Binding
	MarkRead    key.Binding
	MarkAll     key.Binding
	Thumbnail   key.Binding
	Integration key.Binding
	Reload      key.Binding
	LoadMore    key.Binding
	UnreadOnly  key.Binding
	Sort        key.Binding
	AutoLoad    key.Binding
	Wider       key.Binding
	Narrower    key.Binding

	// Feeds
	AddFeed    key.Binding
	EditFeed   key.Binding
	DeleteFeed key.Binding

	// Toasts
	ToggleToast  key.Binding
	DismissToast key.Binding

	// Forms and dialogs
	Confirm key.Binding
	Next    key.Binding
	Prev    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Toggle sidebar"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Next"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d", " "),
			key.WithHelp("pgdown", "Page down"),
		),

		ViewAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "All items"),
		),
		ViewFavorites: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "Favorites"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open feed"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter/o", "Open in browser"),
		),
		CopyLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy link"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle favorite"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Mark read"),
		),
		MarkAll: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "Mark all read"),
		),
		Thumbnail: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Refresh thumbnail"),
		),
		Integration: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Send to integration"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Load more"),
		),
		UnreadOnly: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Unread only"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Toggle sort"),
		),
		AutoLoad: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Toggle auto-load"),
		),
		Wider: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Wider column"),
		),
		Narrower: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Narrower column"),
		),

		AddFeed: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Add feed"),
		),
		EditFeed: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit feed"),
		),
		DeleteFeed: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete feed"),
		),

		ToggleToast: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Expand toast"),
		),
		DismissToast: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Dismiss toast"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.ViewAll, k.ViewFavorites, k.Select, k.ToggleSidebar},
		{k.Open, k.CopyLink, k.Favorite, k.MarkRead, k.MarkAll, k.Thumbnail, k.Integration},
		{k.Reload, k.LoadMore, k.UnreadOnly, k.Sort, k.AutoLoad, k.Wider, k.Narrower},
		{k.AddFeed, k.EditFeed, k.DeleteFeed},
		{k.ToggleToast, k.DismissToast, k.CycleTheme, k.Help, k.Quit},
	}
}
