// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// ArticleLoaded carries an article and its recommendations back to the model.
type ArticleLoaded struct {
	Article *domain.ArticleView
	Err     error
}

// HistoryLoaded carries the session's recent visits.
type HistoryLoaded struct {
	Entries []domain.HistoryEntry
	Err     error
}

// HistoryCleared signals the session history was emptied.
type HistoryCleared struct {
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewExplore is the query, article and recommendations view.
	ViewExplore ViewType = iota
	// ViewHistory lists recent visits.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewExplore:
		return "explore"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
