// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Catalog owns the loaded vectors and their index; the
// RecommendationService reads it, the HistoryService keeps per-session
// visit logs, and the ExplorerService combines both with the encyclopedia
// into the reading flow.
package services
