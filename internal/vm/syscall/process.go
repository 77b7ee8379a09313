package syscall

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"github.com/snowlang/snow/internal/vm"
)

// threadEntry tracks one THREAD_CREATE'd goroutine: its exit value lands
// on done once the spawned Caller's entry function returns.
type threadEntry struct {
	done chan vm.Value
	exit vm.Value
	err  error
}

func registerProcessHandlers(t *Table) {
	t.register("EXIT", func(t *Table, args []vm.Value) (vm.Value, error) {
		code, _ := argInt(args, 0)
		os.Exit(int(code))
		return nil, nil
	})

	t.register("GETPID", func(t *Table, args []vm.Value) (vm.Value, error) {
		return int64(unix.Getpid()), nil
	})

	t.register("GETPPID", func(t *Table, args []vm.Value) (vm.Value, error) {
		return int64(unix.Getppid()), nil
	})

	t.register("FORK", func(t *Table, args []vm.Value) (vm.Value, error) {
		// A real fork() would duplicate this process's entire VM state,
		// which has no meaning for a single Go process hosting the
		// interpreter; THREAD_CREATE is the supported concurrency
		// primitive. FORK is kept in the table for dispatch completeness
		// but always reports "not supported" via the in-band convention.
		t.setErrno(ErrNotSupported)
		return int64(-1), nil
	})

	t.register("EXEC", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		var argv []string
		if len(args) > 1 {
			if arr, ok := args[1].(*vm.Array); ok {
				for _, e := range arr.Elems {
					if s, ok := e.(string); ok {
						argv = append(argv, s)
					}
				}
			}
		}
		cmd := exec.Command(path, argv...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Stdin = os.Stdin
		if err := cmd.Run(); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})

	t.register("WAIT", func(t *Table, args []vm.Value) (vm.Value, error) {
		// No child-process registry is maintained (EXEC runs and waits
		// synchronously above); WAIT is only meaningful for THREAD_JOIN.
		t.setErrno(ErrNotSupported)
		return int64(-1), nil
	})

	t.register("THREAD_CREATE", func(t *Table, args []vm.Value) (vm.Value, error) {
		entry, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		var arg vm.Value
		if len(args) > 1 {
			arg = args[1]
		}
		if t.Host == nil {
			return nil, fmt.Errorf("THREAD_CREATE: no host VM installed")
		}
		th := &threadEntry{done: make(chan vm.Value, 1)}
		tid := t.Threads.Add(th)

		caller := t.Host.NewThread()
		go func() {
			result, err := caller.Call(entry, []vm.Value{arg})
			th.err = err
			th.exit = result
			th.done <- result
		}()
		return int64(tid), nil
	})

	t.register("THREAD_JOIN", func(t *Table, args []vm.Value) (vm.Value, error) {
		tid, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		v, ok := t.Threads.Get(int(tid))
		if !ok {
			return nil, errNotFound("thread", int(tid))
		}
		th := v.(*threadEntry)
		<-th.done
		if th.err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return th.exit, nil
	})

	t.register("SLEEP", func(t *Table, args []vm.Value) (vm.Value, error) {
		ms, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return int64(0), nil
	})
}
