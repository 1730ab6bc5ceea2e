package cache

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New[string](1 * time.Second)
	defer c.Close()

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New[int](1 * time.Second)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("key1", 42)

	if _, found := c.Get("key1"); !found {
		t.Error("Expected to find key1 immediately")
	}

	now = now.Add(2 * time.Second)
	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := New[string](time.Hour)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.SetWithTTL("short", "v", time.Millisecond)

	now = now.Add(time.Second)
	if _, found := c.Get("short"); found {
		t.Error("Expected custom TTL to apply")
	}
}

func TestCache_ClearAndPurge(t *testing.T) {
	c := New[string](1 * time.Second)
	defer c.Close()

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Clear("key1")

	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be cleared")
	}

	c.Purge()
	if _, found := c.Get("key2"); found {
		t.Error("Expected key2 to be purged")
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New[string](time.Second)
	c.Close()
	c.Close()
}
