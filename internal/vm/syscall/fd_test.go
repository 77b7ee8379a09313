package syscall

import (
	"path/filepath"
	"testing"

	"github.com/snowlang/snow/internal/vm"
)

func TestOpenWriteReadClose(t *testing.T) {
	tab := New()
	path := filepath.Join(t.TempDir(), "f.txt")

	fd, err := tab.Invoke("OPEN", []vm.Value{path, int64(0x3)}) // write | create
	if err != nil {
		t.Fatalf("OPEN: %v", err)
	}

	data := bytesToArray([]byte("hello"))
	n, err := tab.Invoke("WRITE", []vm.Value{fd, data})
	if err != nil {
		t.Fatalf("WRITE: %v", err)
	}
	if n.(int64) != 5 {
		t.Fatalf("WRITE returned %v, want 5", n)
	}
	if _, err := tab.Invoke("CLOSE", []vm.Value{fd}); err != nil {
		t.Fatalf("CLOSE: %v", err)
	}

	fd2, err := tab.Invoke("OPEN", []vm.Value{path, int64(0)}) // read-only
	if err != nil {
		t.Fatalf("OPEN for read: %v", err)
	}
	got, err := tab.Invoke("READ", []vm.Value{fd2, int64(16)})
	if err != nil {
		t.Fatalf("READ: %v", err)
	}
	arr := got.(*vm.Array)
	if string(arrayToBytes(arr)) != "hello" {
		t.Fatalf("READ = %q, want %q", string(arrayToBytes(arr)), "hello")
	}
	if _, err := tab.Invoke("CLOSE", []vm.Value{fd2}); err != nil {
		t.Fatalf("CLOSE: %v", err)
	}
}

func TestOpenMissingFileReportsNotFound(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("OPEN", []vm.Value{filepath.Join(t.TempDir(), "nope.txt"), int64(0)})
	if err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	if got.(int64) != -1 {
		t.Fatalf("OPEN on a missing file = %v, want -1", got)
	}
	if tab.errno != ErrNotFound {
		t.Fatalf("errno = %d, want ErrNotFound", tab.errno)
	}
}

func TestCloseUnknownFDFails(t *testing.T) {
	tab := New()
	if _, err := tab.Invoke("CLOSE", []vm.Value{int64(999)}); err == nil {
		t.Fatal("expected CLOSE on an unknown fd to fail")
	}
}

func TestDupSharesTheSameUnderlyingFD(t *testing.T) {
	tab := New()
	path := filepath.Join(t.TempDir(), "f.txt")
	fd, err := tab.Invoke("OPEN", []vm.Value{path, int64(0x3)})
	if err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	dup, err := tab.Invoke("DUP", []vm.Value{fd})
	if err != nil {
		t.Fatalf("DUP: %v", err)
	}
	if dup.(int64) == fd.(int64) {
		t.Fatalf("DUP returned the same fd id %v", dup)
	}
}

func TestStatReportsSizeAndIsDir(t *testing.T) {
	tab := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	fd, err := tab.Invoke("OPEN", []vm.Value{path, int64(0x3)})
	if err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	if _, err := tab.Invoke("WRITE", []vm.Value{fd, bytesToArray([]byte("abcd"))}); err != nil {
		t.Fatalf("WRITE: %v", err)
	}
	tab.Invoke("CLOSE", []vm.Value{fd})

	got, err := tab.Invoke("STAT", []vm.Value{path})
	if err != nil {
		t.Fatalf("STAT: %v", err)
	}
	attrs := got.(*vm.Array)
	if attrs.Elems[0].(int64) != 4 {
		t.Fatalf("STAT size = %v, want 4", attrs.Elems[0])
	}
	if attrs.Elems[1].(int64) != 0 {
		t.Fatalf("STAT isdir = %v, want 0 for a regular file", attrs.Elems[1])
	}

	gotDir, err := tab.Invoke("STAT", []vm.Value{dir})
	if err != nil {
		t.Fatalf("STAT dir: %v", err)
	}
	if gotDir.(*vm.Array).Elems[1].(int64) != 1 {
		t.Fatal("STAT isdir on a directory should be 1")
	}
}

func TestMkdirRmdirRoundTrip(t *testing.T) {
	tab := New()
	dir := filepath.Join(t.TempDir(), "child")
	if _, err := tab.Invoke("MKDIR", []vm.Value{dir}); err != nil {
		t.Fatalf("MKDIR: %v", err)
	}
	entries, err := tab.Invoke("READDIR", []vm.Value{filepath.Dir(dir)})
	if err != nil {
		t.Fatalf("READDIR: %v", err)
	}
	if len(entries.(*vm.Array).Elems) != 1 {
		t.Fatalf("READDIR after MKDIR found %d entries, want 1", len(entries.(*vm.Array).Elems))
	}
	if _, err := tab.Invoke("RMDIR", []vm.Value{dir}); err != nil {
		t.Fatalf("RMDIR: %v", err)
	}
	entries, err = tab.Invoke("READDIR", []vm.Value{filepath.Dir(dir)})
	if err != nil {
		t.Fatalf("READDIR after RMDIR: %v", err)
	}
	if len(entries.(*vm.Array).Elems) != 0 {
		t.Fatal("expected the directory to be empty after RMDIR")
	}
}

func TestGetcwdAfterChdirMatches(t *testing.T) {
	tab := New()
	start, err := tab.Invoke("GETCWD", nil)
	if err != nil {
		t.Fatalf("GETCWD: %v", err)
	}
	defer tab.Invoke("CHDIR", []vm.Value{start.(string)})

	dir := t.TempDir()
	if _, err := tab.Invoke("CHDIR", []vm.Value{dir}); err != nil {
		t.Fatalf("CHDIR: %v", err)
	}
	got, err := tab.Invoke("GETCWD", nil)
	if err != nil {
		t.Fatalf("GETCWD: %v", err)
	}
	// Resolve symlinks (e.g. macOS /tmp -> /private/tmp) before comparing.
	wantResolved, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(got.(string))
	if gotResolved != wantResolved {
		t.Fatalf("GETCWD after CHDIR = %q, want %q", gotResolved, wantResolved)
	}
}
