package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/nhle/mcp-todo/internal/store"
)

// Epoch is the first instant handed out by a Clock.
var Epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

// Clock is a fake time source that advances by one second on every call,
// so consecutive creations get strictly increasing timestamps.
type Clock struct {
	mu   sync.Mutex
	next time.Time
}

// NewClock returns a Clock starting at Epoch.
func NewClock() *Clock {
	return &Clock{next: Epoch}
}

// Now returns the current fake time and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(time.Second)
	return now
}

// NewTestStore creates an in-memory SQLiteStore with all migrations applied
// and a fake clock. It automatically closes the store when the test
// completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", store.WithClock(NewClock().Now))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
