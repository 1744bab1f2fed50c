package cache

import "testing"

func TestStaticInsertGetContains(t *testing.T) {
	c := NewStatic[string, int]()

	if c.Contains("a") {
		t.Fatal("empty cache should not contain 'a'")
	}

	c.Insert("a", 1)
	if !c.Contains("a") {
		t.Fatal("expected cache to contain 'a'")
	}
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("got %d, %v, want 1, true", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("got len %d, want 1", c.Len())
	}
}

func TestStaticNeverEvicts(t *testing.T) {
	c := NewStatic[int, string]()
	for i := 0; i < 1000; i++ {
		c.Insert(i, "x")
	}
	if c.Len() != 1000 {
		t.Fatalf("got len %d, want 1000", c.Len())
	}
	if c.Capacity() != -1 {
		t.Fatalf("got capacity %d, want -1 (unbound)", c.Capacity())
	}
}

func TestStaticReset(t *testing.T) {
	c := NewStatic[string, int]()
	c.Insert("a", 1)
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("got len %d after reset, want 0", c.Len())
	}
	if c.Contains("a") {
		t.Fatal("expected 'a' to be gone after reset")
	}
}
