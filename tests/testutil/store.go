// Package testutil provides shared helpers for tests.
package testutil

import (
	"testing"

	"github.com/nhle/habito/internal/store"
)

// NewTestStore creates an in-memory SQLite store for testing. The store
// is closed automatically when the test finishes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close test store: %v", err)
		}
	})

	return s
}
