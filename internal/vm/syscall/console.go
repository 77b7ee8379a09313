package syscall

import (
	"os"

	"golang.org/x/term"

	"github.com/snowlang/snow/internal/vm"
)

// registerConsoleHandlers wires the Console family to the reserved fds
// 0/1/2. STDIN_READ toggles the terminal into raw mode via golang.org/x/
// term when stdin is a real terminal, restoring cooked mode before
// returning, so a Snow program reading single keystrokes doesn't need the
// host shell's line discipline; a non-terminal stdin (pipe, redirected
// file) just falls back to a buffered read.
func registerConsoleHandlers(t *Table) {
	t.register("STDIN_READ", func(t *Table, args []vm.Value) (vm.Value, error) {
		n, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)

		fd := int(os.Stdin.Fd())
		if term.IsTerminal(fd) {
			prev, err := term.MakeRaw(fd)
			if err == nil {
				defer term.Restore(fd, prev)
			}
		}

		r, err := os.Stdin.Read(buf)
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return bytesToArray(nil), nil
		}
		return bytesToArray(buf[:r]), nil
	})

	t.register("STDOUT_WRITE", func(t *Table, args []vm.Value) (vm.Value, error) {
		data, err := argArray(args, 0)
		if err != nil {
			return nil, err
		}
		n, err := os.Stdout.Write(arrayToBytes(data))
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(n), nil
	})

	t.register("STDERR_WRITE", func(t *Table, args []vm.Value) (vm.Value, error) {
		data, err := argArray(args, 0)
		if err != nil {
			return nil, err
		}
		n, err := os.Stderr.Write(arrayToBytes(data))
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(n), nil
	})
}
