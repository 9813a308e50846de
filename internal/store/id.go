package store

import "github.com/google/uuid"

// IDGenerator produces snapshot ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 snapshot ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Option configures Open.
type Option func(*Store)

// WithIDGenerator replaces the UUIDv7 id source, typically with a
// deterministic one in tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}
