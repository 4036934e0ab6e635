package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache, want miss")
	}

	c.Set("a", "1")
	got, ok := c.Get("a")
	if !ok || got != "1" {
		t.Errorf("Get(a) = %q, %v, want 1, true", got, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestExpiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)
	c.Set("a", 1)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after expiry read, want 0", c.Size())
	}
}

func TestDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](8, time.Minute)
	c.Set("alice:2025-03:summary", 1)
	c.Set("alice:2025-03:trend", 2)
	c.Set("bob:2025-03:summary", 3)

	removed := c.DeletePrefix("alice:")
	if removed != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", removed)
	}
	if _, ok := c.Get("bob:2025-03:summary"); !ok {
		t.Error("bob's entry should survive")
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](8, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)

	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("fresh entry should survive cleanup")
	}
}
