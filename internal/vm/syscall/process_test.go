package syscall

import (
	"testing"

	"github.com/snowlang/snow/internal/vm"
)

type stubCaller struct {
	call func(name string, args []vm.Value) (vm.Value, error)
}

func (c *stubCaller) Call(name string, args []vm.Value) (vm.Value, error) {
	return c.call(name, args)
}

type stubHost struct {
	caller vm.Caller
}

func (h *stubHost) NewThread() vm.Caller { return h.caller }

func TestGetpidGetppidReturnPositive(t *testing.T) {
	tab := New()
	pid, err := tab.Invoke("GETPID", nil)
	if err != nil {
		t.Fatalf("GETPID: %v", err)
	}
	if pid.(int64) <= 0 {
		t.Fatalf("GETPID = %v, want > 0", pid)
	}
	ppid, err := tab.Invoke("GETPPID", nil)
	if err != nil {
		t.Fatalf("GETPPID: %v", err)
	}
	if ppid.(int64) <= 0 {
		t.Fatalf("GETPPID = %v, want > 0", ppid)
	}
}

func TestForkReportsNotSupported(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("FORK", nil)
	if err != nil {
		t.Fatalf("FORK: %v", err)
	}
	if got.(int64) != -1 {
		t.Fatalf("FORK = %v, want -1", got)
	}
	if tab.errno != ErrNotSupported {
		t.Fatalf("errno = %d, want ErrNotSupported", tab.errno)
	}
}

func TestProcessWaitReportsNotSupported(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("WAIT", nil)
	if err != nil {
		t.Fatalf("WAIT: %v", err)
	}
	if got.(int64) != -1 {
		t.Fatalf("WAIT = %v, want -1", got)
	}
	if tab.errno != ErrNotSupported {
		t.Fatalf("errno = %d, want ErrNotSupported", tab.errno)
	}
}

func TestThreadCreateWithoutHostFails(t *testing.T) {
	tab := New()
	if _, err := tab.Invoke("THREAD_CREATE", []vm.Value{"Entry.fn"}); err == nil {
		t.Fatal("expected THREAD_CREATE without an installed host to fail")
	}
}

func TestThreadCreateAndJoinRoundTrip(t *testing.T) {
	tab := New()
	caller := &stubCaller{call: func(name string, args []vm.Value) (vm.Value, error) {
		n := args[0].(int64)
		return n * 2, nil
	}}
	tab.SetHost(&stubHost{caller: caller})

	tid, err := tab.Invoke("THREAD_CREATE", []vm.Value{"Worker.double", int64(21)})
	if err != nil {
		t.Fatalf("THREAD_CREATE: %v", err)
	}

	got, err := tab.Invoke("THREAD_JOIN", []vm.Value{tid})
	if err != nil {
		t.Fatalf("THREAD_JOIN: %v", err)
	}
	if got.(int64) != 42 {
		t.Fatalf("THREAD_JOIN result = %v, want 42", got)
	}
}

func TestThreadJoinUnknownIDFails(t *testing.T) {
	tab := New()
	if _, err := tab.Invoke("THREAD_JOIN", []vm.Value{int64(999)}); err == nil {
		t.Fatal("expected THREAD_JOIN on an unknown thread id to fail")
	}
}
