package id

import "testing"

func TestNewIsUniqueAndOrdered(t *testing.T) {
	prev := New()
	seen := map[string]bool{prev: true}
	for i := 0; i < 1000; i++ {
		next := New()
		if seen[next] {
			t.Fatalf("duplicate id %s", next)
		}
		if next <= prev {
			t.Fatalf("ids not monotonic: %s <= %s", next, prev)
		}
		seen[next] = true
		prev = next
	}
}

func TestNewUUID(t *testing.T) {
	a, b := NewUUID(), NewUUID()
	if a == "" || a == b {
		t.Fatalf("unexpected uuids %q %q", a, b)
	}
	if len(a) != 36 {
		t.Fatalf("expected canonical uuid form, got %q", a)
	}
}
