package syscall

import (
	"fmt"

	"github.com/snowlang/snow/internal/vm"
)

// Handler is one dispatch-table entry: it receives its arguments exactly
// as popped off the operand stack (left-to-right, per §4.9's "last-
// argument-on-top" pop order already undone by internal/vm before the
// call reaches here) and returns the single value RET_V's POP convention
// expects back.
type Handler func(t *Table, args []vm.Value) (vm.Value, error)

// Table is the full dispatch surface, implementing vm.Syscalls. Each
// resource-creating family owns its own Registry; Console/Array/System-
// info/Time have no resources to register.
type Table struct {
	handlers map[string]Handler

	FDs     *Registry // fd -> fdLike (*os.File or serial port)
	Sockets *Registry // socket id -> *socketEntry
	Mutexes *Registry // id -> *mutexEntry
	Conds   *Registry // id -> *condEntry
	Sems    *Registry // id -> *semEntry
	RWLocks *Registry // id -> *rwlockEntry
	Threads *Registry // tid -> *threadEntry

	errno int

	// Host is the owning VM, wired in by the driver after both are
	// constructed. THREAD_CREATE needs it to spawn a new VM sharing this
	// same Table and Program but its own operand stack/local store/call
	// stack (§5: "its own operand stack, local store, and call stack,
	// sharing only the process-wide registries").
	Host HostVM
}

// HostVM is the slice of *vm.VM that THREAD_CREATE needs: spawning a
// fresh, independent execution context against the same loaded program.
type HostVM interface {
	NewThread() vm.Caller
}

// SetHost installs the owning VM once both it and this Table exist.
func (t *Table) SetHost(h HostVM) { t.Host = h }

// New builds a Table with stdin/stdout/stderr pre-registered at fds 0/1/2
// and every family's handlers wired in.
func New() *Table {
	t := &Table{
		handlers: make(map[string]Handler),
		FDs:      NewRegistry(3),
		Sockets:  NewRegistry(1),
		Mutexes:  NewRegistry(1),
		Conds:    NewRegistry(1),
		Sems:     NewRegistry(1),
		RWLocks:  NewRegistry(1),
		Threads:  NewRegistry(1),
	}
	installStdFDs(t)
	registerFDHandlers(t)
	registerDirectoryHandlers(t)
	registerConsoleHandlers(t)
	registerMultiplexHandlers(t)
	registerNetworkHandlers(t)
	registerProcessHandlers(t)
	registerArrayHandlers(t)
	registerSysInfoHandlers(t)
	registerSyncHandlers(t)
	registerTimeHandlers(t)
	return t
}

func (t *Table) register(name string, h Handler) {
	t.handlers[name] = h
}

// Invoke implements vm.Syscalls.
func (t *Table) Invoke(name string, args []vm.Value) (vm.Value, error) {
	h, ok := t.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown syscall %q", name)
	}
	return h(t, args)
}

// setErrno/Errno back the System-info family's ERRNO/ERRSTR pair: handlers
// that use the in-band numeric-failure convention (§7 plane 3) record the
// taxonomy code here before returning -1.
const (
	ErrNone = iota
	ErrInvalidArgument
	ErrNotFound
	ErrPermissionDenied
	ErrTimeout
	ErrInterrupted
	ErrNotSupported
	ErrUnclassifiedIO
)

func (t *Table) setErrno(code int) { t.errno = code }

var errnoNames = map[int]string{
	ErrNone:             "",
	ErrInvalidArgument:  "invalid argument",
	ErrNotFound:         "not found",
	ErrPermissionDenied: "permission denied",
	ErrTimeout:          "timeout",
	ErrInterrupted:      "interrupted",
	ErrNotSupported:     "not supported",
	ErrUnclassifiedIO:   "I/O error",
}

func argInt(args []vm.Value, i int) (int64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	}
	return 0, fmt.Errorf("argument %d is not an integer", i)
}

func argString(args []vm.Value, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d is not a string", i)
	}
	return s, nil
}

func argArray(args []vm.Value, i int) (*vm.Array, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	a, ok := args[i].(*vm.Array)
	if !ok {
		return nil, fmt.Errorf("argument %d is not an array", i)
	}
	return a, nil
}

func bytesToArray(b []byte) *vm.Array {
	arr := vm.NewArray(len(b))
	for i, c := range b {
		arr.Elems[i] = int64(c)
	}
	return arr
}

func arrayToBytes(a *vm.Array) []byte {
	b := make([]byte, len(a.Elems))
	for i, e := range a.Elems {
		n, _ := e.(int64)
		b[i] = byte(n)
	}
	return b
}
