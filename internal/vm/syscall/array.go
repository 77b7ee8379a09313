package syscall

import "github.com/snowlang/snow/internal/vm"

// registerArrayHandlers wires the Array family over the runtime's list
// representation (vm.Array); per spec.md, numbers and booleans are pushed
// as integers and everything else is pushed as-is.
func registerArrayHandlers(t *Table) {
	asPushed := func(v vm.Value) vm.Value {
		switch x := v.(type) {
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		case float64:
			return int64(x)
		}
		return v
	}

	t.register("ARR_LEN", func(t *Table, args []vm.Value) (vm.Value, error) {
		arr, err := argArray(args, 0)
		if err != nil {
			return nil, err
		}
		return int64(len(arr.Elems)), nil
	})

	t.register("ARR_GET", func(t *Table, args []vm.Value) (vm.Value, error) {
		arr, err := argArray(args, 0)
		if err != nil {
			return nil, err
		}
		idx, err := argInt(args, 1)
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(arr.Elems) {
			t.setErrno(ErrInvalidArgument)
			return int64(-1), nil
		}
		return asPushed(arr.Elems[idx]), nil
	})

	t.register("ARR_SET", func(t *Table, args []vm.Value) (vm.Value, error) {
		arr, err := argArray(args, 0)
		if err != nil {
			return nil, err
		}
		idx, err := argInt(args, 1)
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(arr.Elems) {
			t.setErrno(ErrInvalidArgument)
			return int64(-1), nil
		}
		if len(args) > 2 {
			arr.Elems[idx] = args[2]
		}
		return int64(0), nil
	})

	t.register("ARR_REMOVE", func(t *Table, args []vm.Value) (vm.Value, error) {
		arr, err := argArray(args, 0)
		if err != nil {
			return nil, err
		}
		idx, err := argInt(args, 1)
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(arr.Elems) {
			t.setErrno(ErrInvalidArgument)
			return int64(-1), nil
		}
		removed := arr.Elems[idx]
		arr.Elems = append(arr.Elems[:idx], arr.Elems[idx+1:]...)
		return asPushed(removed), nil
	})
}
