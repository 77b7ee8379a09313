package syscall

import (
	"crypto/rand"
	"os"
	"runtime"

	"github.com/snowlang/snow/internal/vm"
)

func registerSysInfoHandlers(t *Table) {
	t.register("GETENV", func(t *Table, args []vm.Value) (vm.Value, error) {
		name, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		v, ok := os.LookupEnv(name)
		if !ok {
			t.setErrno(ErrNotFound)
			return "", nil
		}
		return v, nil
	})

	t.register("SETENV", func(t *Table, args []vm.Value) (vm.Value, error) {
		name, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		val, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		if err := os.Setenv(name, val); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})

	t.register("NCPU", func(t *Table, args []vm.Value) (vm.Value, error) {
		return int64(runtime.NumCPU()), nil
	})

	t.register("RANDOM_BYTES", func(t *Table, args []vm.Value) (vm.Value, error) {
		n, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := rand.Read(buf); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return bytesToArray(nil), nil
		}
		return bytesToArray(buf), nil
	})

	t.register("ERRNO", func(t *Table, args []vm.Value) (vm.Value, error) {
		return int64(t.errno), nil
	})

	t.register("ERRSTR", func(t *Table, args []vm.Value) (vm.Value, error) {
		return errnoNames[t.errno], nil
	})

	t.register("MEMINFO", func(t *Table, args []vm.Value) (vm.Value, error) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		info := vm.NewArray(4)
		info.Elems[0] = int64(m.Alloc)
		info.Elems[1] = int64(m.TotalAlloc)
		info.Elems[2] = int64(m.Sys)
		info.Elems[3] = int64(m.NumGC)
		return info, nil
	})
}
