package syscall

import (
	"net"
	"os"
	"time"

	"github.com/creack/goselect"

	"github.com/snowlang/snow/internal/vm"
)

// fder is satisfied by anything select(2) can poll directly: *os.File and
// the standard streams. A socketEntry's net.Conn has no raw fd, so its
// readiness is probed separately (see socketReady below) — the two
// probes are merged into one result set of registry ids.
type fder interface {
	Fd() uintptr
}

func registerMultiplexHandlers(t *Table) {
	t.register("SELECT", func(t *Table, args []vm.Value) (vm.Value, error) {
		readSet, err := argArray(args, 0)
		if err != nil {
			return nil, err
		}
		writeSet, err := argArray(args, 1)
		if err != nil {
			return nil, err
		}
		exceptSet, err := argArray(args, 2)
		if err != nil {
			return nil, err
		}
		timeoutMs, _ := argInt(args, 3)

		readyRead := selectFDs(t, readSet, timeoutMs, true)
		readyWrite := selectFDs(t, writeSet, timeoutMs, false)
		readyExcept := vm.NewArray(0) // no out-of-band condition is modeled

		_ = exceptSet
		result := vm.NewArray(3)
		result.Elems[0] = readyRead
		result.Elems[1] = readyWrite
		result.Elems[2] = readyExcept
		return result, nil
	})

	t.register("IO_WAIT", func(t *Table, args []vm.Value) (vm.Value, error) {
		fdID, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		timeoutMs, _ := argInt(args, 1)
		one := &vm.Array{Elems: []vm.Value{fdID}}
		ready := selectFDs(t, one, timeoutMs, true)
		if len(ready.Elems) > 0 {
			return int64(1), nil
		}
		return int64(0), nil
	})
}

// selectFDs polls every fd id in set for readability (forRead) or
// writability, returning the ready subset.
func selectFDs(t *Table, set *vm.Array, timeoutMs int64, forRead bool) *vm.Array {
	timeout := time.Duration(timeoutMs) * time.Millisecond
	if timeoutMs < 0 {
		timeout = 24 * time.Hour // "negative means indefinite wait"
	}

	var pollable []int
	var pollIDs []int64 // registry id of each pollable entry
	var ready []vm.Value

	for _, e := range set.Elems {
		id, ok := e.(int64)
		if !ok {
			continue
		}
		if v, ok := t.Sockets.Get(int(id)); ok {
			if sock, ok := v.(*socketEntry); ok && socketReady(sock, forRead, 0) {
				ready = append(ready, id)
			}
			continue
		}
		if v, ok := t.FDs.Get(int(id)); ok {
			if f, ok := v.(fder); ok {
				pollable = append(pollable, int(f.Fd()))
				pollIDs = append(pollIDs, id)
				continue
			}
		}
	}

	if len(pollable) > 0 {
		fdSet := goselect.NewFDSet(pollable...)
		maxFd := 0
		for _, fd := range pollable {
			if fd > maxFd {
				maxFd = fd
			}
		}
		var rset, wset *goselect.FDSet
		if forRead {
			rset = fdSet
		} else {
			wset = fdSet
		}
		if err := goselect.Select(maxFd+1, rset, wset, nil, timeout); err == nil {
			for i, fd := range pollable {
				if fdSet.IsSet(uintptr(fd)) {
					ready = append(ready, pollIDs[i])
				}
			}
		}
	}

	return &vm.Array{Elems: ready}
}

// socketReady probes a net.Conn for readability/writability by setting a
// near-zero deadline and attempting the operation; this stands in for a
// raw-fd select() since net.Conn exposes no descriptor to hand goselect.
func socketReady(sock *socketEntry, forRead bool, _ int) bool {
	if sock.conn == nil {
		return false
	}
	if forRead {
		_ = sock.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
		defer sock.conn.SetReadDeadline(time.Time{})
		buf := make([]byte, 1)
		n, err := sock.reader.Peek(len(buf))
		return n > 0 || (err == nil)
	}
	return true // outbound buffer space is assumed available
}

var _ net.Conn = (*net.TCPConn)(nil)
var _ fder = (*os.File)(nil)
