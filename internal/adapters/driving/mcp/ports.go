package mcp

import (
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

// DefaultSessionID is used when a tool call names no session.
const DefaultSessionID = "mcp"

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recommend suggests related articles for a title.
	Recommend driving.RecommendationService

	// Explorer resolves and opens encyclopedia articles.
	Explorer driving.ExplorerService

	// History manages per-session visit logs.
	History driving.HistoryService

	// Catalog describes the loaded catalog.
	Catalog driving.CatalogService
}

// Validate ensures the server has something to serve. A history-only
// server is valid so visit logs stay reachable when the catalog fails to
// load; tools whose port is nil report themselves unavailable.
func (p *Ports) Validate() error {
	if p.Recommend == nil && p.History == nil {
		return ErrNoServices
	}
	return nil
}
