// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wikirec/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// Item is one row of an ArticleList.
type Item struct {
	// Key identifies the article: a page id for recommendations,
	// a URL for history entries.
	Key    string
	Title  string
	Detail string
}

// FromRecommendations converts recommendations to list items.
func FromRecommendations(recs []domain.Recommendation) []Item {
	items := make([]Item, len(recs))
	for i, r := range recs {
		items[i] = Item{Key: r.ID, Title: r.Title}
	}
	return items
}

// FromHistory converts history entries to list items, newest first.
func FromHistory(entries []domain.HistoryEntry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[len(entries)-1-i] = Item{Key: e.URL, Title: e.Title, Detail: e.URL}
	}
	return items
}

// ArticleList is a navigable list of articles.
type ArticleList struct {
	header   string
	empty    string
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewArticleList creates a list with the given header and empty-state text.
func NewArticleList(s *styles.Styles, header, empty string) *ArticleList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ArticleList{
		header: header,
		empty:  empty,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *ArticleList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *ArticleList) Update(msg tea.Msg) (*ArticleList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *ArticleList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render(l.empty)
	}

	lines := make([]string, 0, len(l.items)*2+2)
	lines = append(lines, l.styles.Subtitle.Render(l.header), "")

	perItem := 1
	if l.hasDetail() {
		perItem = 2
	}
	visible := (l.height - 2) / perItem
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.items))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i))
	}

	return strings.Join(lines, "\n")
}

func (l *ArticleList) renderItem(index int) string {
	item := l.items[index]

	title := item.Title
	if title == "" {
		title = "(untitled)"
	}
	title = truncate(title, max(l.width-8, 10))

	line := fmt.Sprintf("  %d. %s", index+1, title)
	if index == l.selected {
		line = l.styles.Selected.Render(fmt.Sprintf("> %d. %s", index+1, title))
	} else {
		line = l.styles.Normal.Render(line)
	}

	if item.Detail != "" {
		line += "\n" + l.styles.Muted.Render("     "+truncate(item.Detail, max(l.width-6, 20)))
	}
	return line
}

func (l *ArticleList) hasDetail() bool {
	for _, it := range l.items {
		if it.Detail != "" {
			return true
		}
	}
	return false
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetItems replaces the list contents and resets the selection.
func (l *ArticleList) SetItems(items []Item) {
	l.items = items
	l.selected = 0
}

// Items returns the current items.
func (l *ArticleList) Items() []Item {
	return l.items
}

// Selected returns the index of the selected item.
func (l *ArticleList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index. Out of range values are ignored.
func (l *ArticleList) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedItem returns the selected item, or nil if the list is empty.
func (l *ArticleList) SelectedItem() *Item {
	if l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// MoveUp moves selection up.
func (l *ArticleList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ArticleList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ArticleList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *ArticleList) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *ArticleList) IsEmpty() bool {
	return len(l.items) == 0
}
