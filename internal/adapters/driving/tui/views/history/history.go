// Package history provides the recent-visits view.
package history

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

// ErrNoHistoryService indicates that no history service was provided.
var ErrNoHistoryService = errors.New("history service is required")

// View lists the session's recent visits, newest first.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.ArticleList
	statusbar *status.Bar

	history   driving.HistoryService
	sessionID string
	ctx       context.Context

	err   error
	ready bool
}

// NewView creates a history view for one session.
func NewView(s *styles.Styles, km *keymap.KeyMap, history driving.HistoryService, sessionID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewArticleList(s, "Recently viewed", "History is empty"),
		statusbar: status.NewBar(s, km),
		history:   history,
		sessionID: sessionID,
		ctx:       context.Background(),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetState(status.StateLoading)
	history, ctx, session := v.history, v.ctx, v.sessionID
	return func() tea.Msg {
		if history == nil {
			return messages.HistoryLoaded{Err: ErrNoHistoryService}
		}
		entries, err := history.Get(ctx, session)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.list.SetItems(list.FromHistory(msg.Entries))
		v.statusbar.SetState(status.StateHistory)
		v.statusbar.SetMessage("")
		v.statusbar.SetCount(len(msg.Entries))
		return v, nil

	case messages.HistoryCleared:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.list.SetItems(nil)
		v.statusbar.SetState(status.StateHistory)
		v.statusbar.SetCount(0)
		v.statusbar.SetMessage("History cleared")
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back), keymap.Matches(key, v.keymap.History):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewExplore}
		}
	case keymap.Matches(key, v.keymap.ClearHistory):
		return v, v.clear()
	case keymap.Matches(key, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) clear() tea.Cmd {
	history, ctx, session := v.history, v.ctx, v.sessionID
	return func() tea.Msg {
		if history == nil {
			return messages.HistoryCleared{Err: ErrNoHistoryService}
		}
		return messages.HistoryCleared{Err: history.Clear(ctx, session)}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(domain.Notice(err))
}

// View renders the history view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("History"), ""}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render(domain.Notice(v.err)), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.ready = true
	v.list.SetDimensions(width, height-6)
	v.statusbar.SetWidth(width)
}

// Entries returns the listed visits, newest first.
func (v *View) Entries() []list.Item {
	return v.list.Items()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
