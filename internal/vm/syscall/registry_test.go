package syscall

import "testing"

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry(3)
	id := r.Add("hello")
	if id != 3 {
		t.Fatalf("first Add id = %d, want 3", id)
	}
	v, ok := r.Get(id)
	if !ok || v != "hello" {
		t.Fatalf("Get(%d) = %v, %v", id, v, ok)
	}
	if _, ok := r.Remove(id); !ok {
		t.Fatalf("Remove(%d) = false, want true", id)
	}
	if _, ok := r.Get(id); ok {
		t.Fatalf("Get(%d) after Remove should fail", id)
	}
}

// TestRegistryIDDiscipline covers spec.md §8's "CLOSE(fd) after OPEN(fd)
// leaves the registry size unchanged from before the OPEN" property.
func TestRegistryIDDiscipline(t *testing.T) {
	r := NewRegistry(0)
	before := r.Len()
	id := r.Add(struct{}{})
	if r.Len() != before+1 {
		t.Fatalf("Len after Add = %d, want %d", r.Len(), before+1)
	}
	r.Remove(id)
	if r.Len() != before {
		t.Fatalf("Len after Remove = %d, want %d", r.Len(), before)
	}
}

func TestRegistryIDsNeverReused(t *testing.T) {
	r := NewRegistry(0)
	a := r.Add("a")
	r.Remove(a)
	b := r.Add("b")
	if b == a {
		t.Fatalf("expected a fresh id after removal, got reused id %d", a)
	}
}
