package syscall

import (
	"io"
	"os"
	"strconv"
	"strings"

	"go.bug.st/serial"

	"github.com/snowlang/snow/internal/vm"
)

// fdLike is what the FD registry actually stores: a real *os.File, an open
// go.bug.st/serial port, or one of the three reserved standard streams —
// anything the FD/File and Console families can READ/WRITE/CLOSE
// uniformly.
type fdLike interface {
	io.Reader
	io.Writer
	io.Closer
}

func installStdFDs(t *Table) {
	t.FDs.Set(0, os.Stdin)
	t.FDs.Set(1, os.Stdout)
	t.FDs.Set(2, os.Stderr)
}

func getFD(t *Table, id int64) (fdLike, error) {
	v, ok := t.FDs.Get(int(id))
	if !ok {
		return nil, errNotFound("fd", int(id))
	}
	f, ok := v.(fdLike)
	if !ok {
		return nil, errNotFound("fd", int(id))
	}
	return f, nil
}

// openSerial implements the "OPEN on serial:<port>:<baud>" path convention
// SPEC_FULL's domain stack wires go.bug.st/serial through: a path of that
// shape opens a real serial port instead of a regular file, and the
// resulting handle is registered in the ordinary fd table so READ/WRITE/
// CLOSE treat it like any other fd.
func openSerial(spec string) (fdLike, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return nil, errNotFound("serial spec", 0)
	}
	baud, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(parts[1], &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return port, nil
}

func registerFDHandlers(t *Table) {
	t.register("OPEN", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		flags, _ := argInt(args, 1)

		if strings.HasPrefix(path, "serial:") {
			port, err := openSerial(path)
			if err != nil {
				t.setErrno(ErrUnclassifiedIO)
				return int64(-1), nil
			}
			return int64(t.FDs.Add(port)), nil
		}

		f, err := os.OpenFile(path, osFlags(flags), 0644)
		if err != nil {
			t.setErrno(ErrNotFound)
			return int64(-1), nil
		}
		return int64(t.FDs.Add(f)), nil
	})

	t.register("READ", func(t *Table, args []vm.Value) (vm.Value, error) {
		fdID, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		n, err := argInt(args, 1)
		if err != nil {
			return nil, err
		}
		f, err := getFD(t, fdID)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		r, err := f.Read(buf)
		if err != nil && err != io.EOF {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return bytesToArray(buf[:r]), nil
	})

	t.register("WRITE", func(t *Table, args []vm.Value) (vm.Value, error) {
		fdID, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		data, err := argArray(args, 1)
		if err != nil {
			return nil, err
		}
		f, err := getFD(t, fdID)
		if err != nil {
			return nil, err
		}
		n, err := f.Write(arrayToBytes(data))
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(n), nil
	})

	t.register("SEEK", func(t *Table, args []vm.Value) (vm.Value, error) {
		fdID, _ := argInt(args, 0)
		off, _ := argInt(args, 1)
		whence, _ := argInt(args, 2)
		v, ok := t.FDs.Get(int(fdID))
		if !ok {
			return nil, errNotFound("fd", int(fdID))
		}
		osf, ok := v.(*os.File)
		if !ok {
			t.setErrno(ErrNotSupported)
			return int64(-1), nil
		}
		pos, err := osf.Seek(off, int(whence))
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return pos, nil
	})

	t.register("CLOSE", func(t *Table, args []vm.Value) (vm.Value, error) {
		fdID, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		v, ok := t.FDs.Remove(int(fdID))
		if !ok {
			return nil, errNotFound("fd", int(fdID))
		}
		if f, ok := v.(fdLike); ok {
			_ = f.Close()
		}
		return int64(0), nil
	})

	t.register("STAT", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			t.setErrno(ErrNotFound)
			return int64(-1), nil
		}
		attrs := vm.NewArray(3)
		attrs.Elems[0] = info.Size()
		if info.IsDir() {
			attrs.Elems[1] = int64(1)
		} else {
			attrs.Elems[1] = int64(0)
		}
		attrs.Elems[2] = int64(info.Mode().Perm())
		return attrs, nil
	})

	t.register("DUP", func(t *Table, args []vm.Value) (vm.Value, error) {
		fdID, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		v, ok := t.FDs.Get(int(fdID))
		if !ok {
			return nil, errNotFound("fd", int(fdID))
		}
		return int64(t.FDs.Add(v)), nil
	})

	t.register("RENAME", func(t *Table, args []vm.Value) (vm.Value, error) {
		oldPath, _ := argString(args, 0)
		newPath, _ := argString(args, 1)
		if err := os.Rename(oldPath, newPath); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})

	t.register("TRUNCATE", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, _ := argString(args, 0)
		size, _ := argInt(args, 1)
		if err := os.Truncate(path, size); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})
}

func registerDirectoryHandlers(t *Table) {
	t.register("MKDIR", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if err := os.Mkdir(path, 0755); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})

	t.register("RMDIR", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if err := os.Remove(path); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})

	t.register("CHDIR", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if err := os.Chdir(path); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})

	t.register("GETCWD", func(t *Table, args []vm.Value) (vm.Value, error) {
		dir, err := os.Getwd()
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return "", nil
		}
		return dir, nil
	})

	t.register("READDIR", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			t.setErrno(ErrNotFound)
			return vm.NewArray(0), nil
		}
		out := vm.NewArray(len(entries))
		for i, e := range entries {
			out.Elems[i] = e.Name()
		}
		return out, nil
	})

	t.register("CHMOD", func(t *Table, args []vm.Value) (vm.Value, error) {
		path, _ := argString(args, 0)
		mode, _ := argInt(args, 1)
		if err := os.Chmod(path, os.FileMode(mode)); err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(0), nil
	})
}

// osFlags maps the small integer flag set the spec's OPEN accepts (read-
// only by default, bit 0 = write, bit 1 = create, bit 2 = append,
// bit 3 = truncate) onto os.O_* — YAPL/Snow programs never see os.O_*
// directly, so any bit layout is as valid as any other; this one keeps the
// common case (read-only) at zero.
func osFlags(flags int64) int {
	f := os.O_RDONLY
	if flags&0x1 != 0 {
		f = os.O_WRONLY
	}
	if flags&0x2 != 0 {
		f |= os.O_CREATE
	}
	if flags&0x4 != 0 {
		f |= os.O_APPEND
	}
	if flags&0x8 != 0 {
		f |= os.O_TRUNC
	}
	return f
}
