// Package idgen provides monotonically increasing identifiers for
// connections and game sessions. Identifiers are never reused for the
// lifetime of the process, even after the object they named is gone.
package idgen

import "sync/atomic"

// Generator hands out uint64 identifiers starting from 1. It is safe for
// concurrent use; the accept loop and the hub may draw from the same
// generator.
type Generator struct {
	last atomic.Uint64
}

// New returns a Generator whose first Next call yields 1.
//
// Returns:
//   - A new Generator instance
func New() *Generator {
	return &Generator{}
}

// Next returns the next identifier. Zero is never returned, so callers
// may use 0 as a "no id" sentinel (a vacant player slot, an unset turn).
//
// Returns:
//   - The next uint64 identifier
func (g *Generator) Next() uint64 {
	return g.last.Add(1)
}
