// Package memory provides in-memory implementations of driven ports.
// They back the "memory" storage backend and serve as test doubles.
// Nothing survives a restart.
package memory
