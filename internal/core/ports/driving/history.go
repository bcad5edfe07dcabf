package driving

import (
	"context"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// HistoryService manages the bounded per-session visit log.
type HistoryService interface {
	// Append records a visit, evicting the oldest entry when full.
	Append(ctx context.Context, sessionID, title, url string) error

	// Get returns the visits oldest first. Sessions without history
	// return an empty slice.
	Get(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error)

	// Clear empties the session's history without deleting the session.
	Clear(ctx context.Context, sessionID string) error
}
