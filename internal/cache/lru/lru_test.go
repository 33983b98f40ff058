package lru

import "testing"

func TestCache_GetAddPurge(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, ok := c.Get(1); ok {
		t.Fatalf("empty cache must miss")
	}

	c.Add(1, []byte("one"))
	c.Add(2, []byte("two"))
	if v, ok := c.Get(1); !ok || string(v) != "one" {
		t.Fatalf("Get(1) = %q, %v", v, ok)
	}

	// size 2: adding a third entry evicts the least recently used
	c.Add(3, []byte("three"))
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get(2); ok {
		t.Fatalf("entry 2 should have been evicted (1 was touched last)")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len after Purge = %d", c.Len())
	}
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatalf("expected error for size 0")
	}
}
