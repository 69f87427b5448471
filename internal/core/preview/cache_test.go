package preview

import "testing"

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newCache(2)

	c.add("a", []byte("A"))
	c.add("b", []byte("B"))
	if _, ok := c.get("a"); !ok {
		t.Fatal("a should be cached")
	}
	c.add("c", []byte("C"))

	if _, ok := c.get("b"); ok {
		t.Error("b was least recently used and should be evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
	if n := c.len(); n != 2 {
		t.Errorf("len = %d, want 2", n)
	}
}

func TestCache_ReplaceKeepsSize(t *testing.T) {
	c := newCache(2)
	c.add("a", []byte("old"))
	c.add("a", []byte("new"))

	data, ok := c.get("a")
	if !ok || string(data) != "new" {
		t.Errorf("get(a) = %q, %v, want new", data, ok)
	}
	if n := c.len(); n != 1 {
		t.Errorf("len = %d, want 1", n)
	}
}
