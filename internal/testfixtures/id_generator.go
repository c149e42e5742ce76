package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator produces deterministic sequential identifiers for tests.
type IDGenerator struct {
	prefix  string
	counter atomic.Int64
}

// NewIDGenerator creates a generator emitting prefix-1, prefix-2, ...
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// NextFunc returns a func bound to this generator.
func (g *IDGenerator) NextFunc() func() string {
	return g.Next
}
