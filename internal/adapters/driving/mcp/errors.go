// Package mcp provides an MCP (Model Context Protocol) server adapter for wikirec.
// It lets AI assistants look up articles, get related reading and manage
// a reader's visit history.
package mcp

import "errors"

// ErrNoServices is returned when neither the recommendation nor the
// history service is provided.
var ErrNoServices = errors.New("mcp: recommendation or history service is required")
