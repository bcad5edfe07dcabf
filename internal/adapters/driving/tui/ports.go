// Package tui provides an interactive terminal user interface for wikirec.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

// DefaultSessionID names the history session used by the TUI.
const DefaultSessionID = "tui"

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Explorer looks up and opens articles.
	Explorer driving.ExplorerService

	// History lists and clears recent visits.
	History driving.HistoryService

	// Catalog, when set, is described in the help view.
	Catalog driving.CatalogService

	// SessionID is the history session. Empty uses DefaultSessionID.
	SessionID string
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Explorer == nil {
		return ErrMissingExplorerService
	}
	return nil
}

func (p *Ports) session() string {
	if p.SessionID == "" {
		return DefaultSessionID
	}
	return p.SessionID
}
