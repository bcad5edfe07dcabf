// Package explore provides the main reading view: a query, the article
// summary and its recommendations.
package explore

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

// View is the explore view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ArticleList
	statusbar *status.Bar

	explorer  driving.ExplorerService
	sessionID string
	ctx       context.Context

	article    *domain.ArticleView
	err        error
	width      int
	height     int
	ready      bool
	focusInput bool // true while typing a query
}

// NewView creates a new explore view for one history session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	explorer driving.ExplorerService,
	sessionID string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewArticleList(s, "Read next", "No related articles"),
		statusbar:  status.NewBar(s, km),
		explorer:   explorer,
		sessionID:  sessionID,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the explore view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ArticleLoaded:
		v.handleArticleLoaded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			query := v.input.Value()
			if query == "" {
				return v, nil
			}
			v.startLoading()
			return v, v.lookup(query)
		case tea.KeyEsc:
			if v.article != nil {
				v.showResults()
			}
			return v, nil
		default:
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return v, cmd
		}
	}

	key := msg.String()
	switch {
	case msg.Type == tea.KeyEnter:
		item := v.list.SelectedItem()
		if item == nil {
			return v, nil
		}
		v.startLoading()
		return v, v.open(item.Key)
	case keymap.Matches(key, v.keymap.NewQuery):
		v.focusQuery()
		return v, nil
	case keymap.Matches(key, v.keymap.History):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHistory}
		}
	case keymap.Matches(key, v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(key, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	case keymap.Matches(key, v.keymap.Back):
		v.focusQuery()
		return v, nil
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) lookup(query string) tea.Cmd {
	explorer, ctx, session := v.explorer, v.ctx, v.sessionID
	return func() tea.Msg {
		if explorer == nil {
			return messages.ErrorOccurred{Err: ErrNoExplorerService}
		}
		article, err := explorer.Lookup(ctx, session, query)
		return messages.ArticleLoaded{Article: article, Err: err}
	}
}

func (v *View) open(pageID string) tea.Cmd {
	explorer, ctx, session := v.explorer, v.ctx, v.sessionID
	return func() tea.Msg {
		if explorer == nil {
			return messages.ErrorOccurred{Err: ErrNoExplorerService}
		}
		article, err := explorer.Open(ctx, session, pageID)
		return messages.ArticleLoaded{Article: article, Err: err}
	}
}

func (v *View) handleArticleLoaded(msg messages.ArticleLoaded) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Article == nil {
		return
	}

	v.err = nil
	v.article = msg.Article
	v.list.SetItems(list.FromRecommendations(msg.Article.Recommendations))
	v.statusbar.SetState(status.StateArticle)
	v.statusbar.SetMessage("")
	v.statusbar.SetCount(len(msg.Article.Recommendations))
	v.showResults()
}

// setError shows the reader notice for err and returns focus to the query.
func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(domain.Notice(err))
	v.focusInput = true
	v.input.Focus()
}

func (v *View) startLoading() {
	v.statusbar.SetState(status.StateLoading)
	v.focusInput = false
	v.input.Blur()
}

func (v *View) showResults() {
	v.focusInput = false
	v.input.Blur()
}

func (v *View) focusQuery() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
}

// View renders the explore view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("wikirec"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render(domain.Notice(v.err)), "")
	}

	if v.article != nil {
		sections = append(sections,
			v.styles.Title.Render(v.article.Title),
			v.styles.Link.Render(v.article.URL),
		)
		if v.article.Summary != "" {
			sections = append(sections, "", v.styles.Wrap(v.article.Summary, v.width))
		}
		sections = append(sections, "", v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, max(height/3, 5))
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Article returns the displayed article, or nil.
func (v *View) Article() *domain.ArticleView {
	return v.article
}

// SelectedIndex returns the index of the selected recommendation.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the query input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Status returns the status bar, for the app to post transient messages.
func (v *View) Status() *status.Bar {
	return v.statusbar
}

// Reset returns the view to an empty query.
func (v *View) Reset() {
	v.focusQuery()
	v.article = nil
	v.list.SetItems(nil)
	v.err = nil
	v.statusbar.Clear()
}
