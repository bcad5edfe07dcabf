package tui

import "errors"

// ErrMissingExplorerService is returned when the explorer service is not provided.
var ErrMissingExplorerService = errors.New("tui: explorer service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
