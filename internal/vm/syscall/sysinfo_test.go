package syscall

import (
	"testing"

	"github.com/snowlang/snow/internal/vm"
)

func TestGetenvSetenvRoundTrip(t *testing.T) {
	tab := New()
	t.Setenv("SNOW_SYSCALL_TEST_VAR", "")

	got, err := tab.Invoke("GETENV", []vm.Value{"SNOW_SYSCALL_TEST_VAR_UNSET"})
	if err != nil {
		t.Fatalf("GETENV: %v", err)
	}
	if got.(string) != "" {
		t.Fatalf("GETENV on an unset var = %q, want empty", got)
	}
	if tab.errno != ErrNotFound {
		t.Fatalf("errno = %d, want ErrNotFound", tab.errno)
	}

	if _, err := tab.Invoke("SETENV", []vm.Value{"SNOW_SYSCALL_TEST_VAR", "hello"}); err != nil {
		t.Fatalf("SETENV: %v", err)
	}
	got, err = tab.Invoke("GETENV", []vm.Value{"SNOW_SYSCALL_TEST_VAR"})
	if err != nil {
		t.Fatalf("GETENV: %v", err)
	}
	if got.(string) != "hello" {
		t.Fatalf("GETENV after SETENV = %q, want hello", got)
	}
}

func TestNCPUIsPositive(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("NCPU", nil)
	if err != nil {
		t.Fatalf("NCPU: %v", err)
	}
	if got.(int64) <= 0 {
		t.Fatalf("NCPU = %v, want > 0", got)
	}
}

func TestRandomBytesReturnsRequestedLength(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("RANDOM_BYTES", []vm.Value{int64(16)})
	if err != nil {
		t.Fatalf("RANDOM_BYTES: %v", err)
	}
	arr := got.(*vm.Array)
	if len(arr.Elems) != 16 {
		t.Fatalf("len(RANDOM_BYTES(16)) = %d, want 16", len(arr.Elems))
	}
}

func TestErrnoErrstrReflectLastFailure(t *testing.T) {
	tab := New()
	if _, err := tab.Invoke("GETENV", []vm.Value{"SNOW_SYSCALL_TEST_VAR_UNSET"}); err != nil {
		t.Fatalf("GETENV: %v", err)
	}
	code, err := tab.Invoke("ERRNO", nil)
	if err != nil {
		t.Fatalf("ERRNO: %v", err)
	}
	if code.(int64) != int64(ErrNotFound) {
		t.Fatalf("ERRNO = %v, want %d", code, ErrNotFound)
	}
	msg, err := tab.Invoke("ERRSTR", nil)
	if err != nil {
		t.Fatalf("ERRSTR: %v", err)
	}
	if msg.(string) != "not found" {
		t.Fatalf("ERRSTR = %q, want %q", msg, "not found")
	}
}

func TestMemInfoReturnsFourFields(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("MEMINFO", nil)
	if err != nil {
		t.Fatalf("MEMINFO: %v", err)
	}
	arr := got.(*vm.Array)
	if len(arr.Elems) != 4 {
		t.Fatalf("len(MEMINFO) = %d, want 4", len(arr.Elems))
	}
}
