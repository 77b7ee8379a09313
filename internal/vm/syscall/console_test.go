package syscall

import (
	"testing"

	"github.com/snowlang/snow/internal/vm"
)

func TestStdoutWriteReturnsByteCount(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("STDOUT_WRITE", []vm.Value{bytesToArray([]byte("ok\n"))})
	if err != nil {
		t.Fatalf("STDOUT_WRITE: %v", err)
	}
	if got.(int64) != 3 {
		t.Fatalf("STDOUT_WRITE = %v, want 3", got)
	}
}

func TestStderrWriteReturnsByteCount(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("STDERR_WRITE", []vm.Value{bytesToArray([]byte("err\n"))})
	if err != nil {
		t.Fatalf("STDERR_WRITE: %v", err)
	}
	if got.(int64) != 4 {
		t.Fatalf("STDERR_WRITE = %v, want 4", got)
	}
}

func TestStdoutWriteRejectsNonArrayArgument(t *testing.T) {
	tab := New()
	if _, err := tab.Invoke("STDOUT_WRITE", []vm.Value{int64(1)}); err == nil {
		t.Fatal("expected STDOUT_WRITE with a non-array argument to fail")
	}
}
