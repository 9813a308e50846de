package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/kgen/internal/ir"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestMapping builds a mapping from alternating name/value pairs.
func createTestMapping(pairs ...any) *ir.Mapping {
	m := ir.NewMapping()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(ir.Value))
	}
	return m
}
