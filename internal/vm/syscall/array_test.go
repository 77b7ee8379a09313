package syscall

import (
	"testing"

	"github.com/snowlang/snow/internal/vm"
)

func TestArrayLenGetSetRemove(t *testing.T) {
	tab := New()
	arr := vm.NewArray(3)
	arr.Elems[0], arr.Elems[1], arr.Elems[2] = int64(1), int64(2), int64(3)

	n, err := tab.Invoke("ARR_LEN", []vm.Value{arr})
	if err != nil {
		t.Fatalf("ARR_LEN: %v", err)
	}
	if n.(int64) != 3 {
		t.Fatalf("ARR_LEN = %v, want 3", n)
	}

	if _, err := tab.Invoke("ARR_SET", []vm.Value{arr, int64(1), int64(99)}); err != nil {
		t.Fatalf("ARR_SET: %v", err)
	}
	got, err := tab.Invoke("ARR_GET", []vm.Value{arr, int64(1)})
	if err != nil {
		t.Fatalf("ARR_GET: %v", err)
	}
	if got.(int64) != 99 {
		t.Fatalf("ARR_GET after SET = %v, want 99", got)
	}

	removed, err := tab.Invoke("ARR_REMOVE", []vm.Value{arr, int64(0)})
	if err != nil {
		t.Fatalf("ARR_REMOVE: %v", err)
	}
	if removed.(int64) != 1 {
		t.Fatalf("ARR_REMOVE returned %v, want 1", removed)
	}
	if len(arr.Elems) != 2 {
		t.Fatalf("len(arr.Elems) after remove = %d, want 2", len(arr.Elems))
	}
}

func TestArrayGetOutOfRangeReportsInvalidArgument(t *testing.T) {
	tab := New()
	arr := vm.NewArray(1)
	got, err := tab.Invoke("ARR_GET", []vm.Value{arr, int64(5)})
	if err != nil {
		t.Fatalf("ARR_GET: %v", err)
	}
	if got.(int64) != -1 {
		t.Fatalf("ARR_GET out of range = %v, want -1", got)
	}
	if tab.errno != ErrInvalidArgument {
		t.Fatalf("errno = %d, want ErrInvalidArgument", tab.errno)
	}
}
