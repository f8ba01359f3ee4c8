// Package helpers provides shared test fixtures.
package helpers

import (
	"testing"

	"github.com/synthpanel/synthpanel/store"
)

// NewTestSQLiteStore returns an in-memory sqlite store wired to the
// test's cleanup.
func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// NewTestMemoryStore returns a memory store wired to the test's
// cleanup. Prefer it for concurrency tests, where sqlite's :memory:
// mode shares one connection.
func NewTestMemoryStore(t *testing.T) *store.MemoryStore {
	t.Helper()

	s := store.NewMemoryStore()
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
