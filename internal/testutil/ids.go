package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator generates snapshot ids prefix-1, prefix-2, ...
//
// This makes snapshot ids deterministic so command output can be compared
// against golden files.
//
// Thread-safety: SequentialIDGenerator is safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequentialIDGenerator creates a generator starting at 1.
// If prefix is empty, "snap" is used.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "snap"
	}
	return &SequentialIDGenerator{prefix: prefix, next: 1}
}

// Generate returns the next id.
//
// Implements store.IDGenerator interface.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", g.prefix, g.next)
	g.next++
	return id
}

// FixedIDGenerator returns the same id every time. Recording a second
// distinct mapping with it fails on the primary key, which tests use to
// exercise store errors.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator string

// Generate returns the fixed id.
func (g FixedIDGenerator) Generate() string {
	return string(g)
}
