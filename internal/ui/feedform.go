package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/feedprobe"
)

const (
	fieldURL = iota
	fieldTitle
	fieldCount
)

// feedForm adds a feed or edits an existing one. A blank title on a new
// feed is filled from the feed document.
type feedForm struct {
	feed   api.Feed
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newFeedForm(feed api.Feed) *feedForm {
	f := &feedForm{feed: feed}

	url := textinput.New()
	url.Prompt = "URL    "
	url.Placeholder = "https://example.com/feed.xml"
	url.CharLimit = 2048
	url.Width = modalWidth - 16
	url.SetValue(feed.URL)

	title := textinput.New()
	title.Prompt = "Title  "
	title.Placeholder = "from the feed"
	title.CharLimit = 200
	title.Width = modalWidth - 16
	title.SetValue(feed.Title)

	f.inputs[fieldURL] = url
	f.inputs[fieldTitle] = title
	f.inputs[fieldURL].Focus()
	return f
}

func (f *feedForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *feedForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			return f, nil, true
		case key.Matches(keyMsg, keys.Next):
			return f, f.setFocus(f.focus + 1), false
		case key.Matches(keyMsg, keys.Prev):
			return f, f.setFocus(f.focus - 1), false
		case key.Matches(keyMsg, keys.Confirm):
			cmd, err := f.submit()
			if err != "" {
				f.err = err
				return f, nil, false
			}
			return f, cmd, true
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return f, cmd, false
}

func (f *feedForm) submit() (tea.Cmd, string) {
	raw := strings.TrimSpace(f.inputs[fieldURL].Value())
	if raw == "" {
		return nil, "A feed URL is required"
	}
	url, err := feedprobe.NormalizeURL(raw)
	if err != nil {
		return nil, err.Error()
	}
	input := api.FeedInput{
		Title:          strings.TrimSpace(f.inputs[fieldTitle].Value()),
		URL:            url,
		IntegrationIDs: f.feed.IntegrationIDs,
	}
	if f.feed.ID != 0 && input.Title == "" {
		return nil, "A title is required"
	}
	return emit(feedSubmitMsg{id: f.feed.ID, input: input}), ""
}

func (f *feedForm) View(theme Theme, width, height int) string {
	w := min(modalWidth, width-4)
	styles := theme.Styles()
	var body strings.Builder
	for i := range f.inputs {
		body.WriteString(f.inputs[i].View())
		body.WriteString("\n")
	}
	if f.err != "" {
		body.WriteString("\n")
		body.WriteString(styles.DangerText.Render(f.err))
	}
	title := "Add feed"
	if f.feed.ID != 0 {
		title = "Edit feed"
	}
	return modalFrame(theme, theme.Accent, title, strings.TrimRight(body.String(), "\n"), "tab next field  enter save  esc cancel", w)
}
