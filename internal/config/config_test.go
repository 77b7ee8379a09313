package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "snow.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Lib != "" {
		t.Fatalf("expected empty Lib, got %q", f.Lib)
	}
}

func TestLoadParsesLibKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snow.yaml")
	if err := os.WriteFile(path, []byte("lib: /opt/snow/lib\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Lib != "/opt/snow/lib" {
		t.Fatalf("got Lib=%q", f.Lib)
	}
}

func TestResolveLibPathOrder(t *testing.T) {
	cases := []struct {
		name   string
		env    map[string]string
		cfg    *File
		source string
		want   string
	}{
		{
			name:   "env wins over everything",
			env:    map[string]string{"SNOW_LIB": "/env/lib", "SNOW_HOME": "/home"},
			cfg:    &File{Lib: "/cfg/lib"},
			source: ".",
			want:   "/env/lib",
		},
		{
			name:   "config wins over ancestor and home",
			env:    map[string]string{"SNOW_HOME": "/home"},
			cfg:    &File{Lib: "/cfg/lib"},
			source: ".",
			want:   "/cfg/lib",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			got := ResolveLibPath(tc.cfg, tc.source)
			if got != tc.want {
				t.Fatalf("ResolveLibPath() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveLibPathFindsAncestorLibDir(t *testing.T) {
	root := t.TempDir()
	libDir := filepath.Join(root, "lib")
	if err := os.Mkdir(libDir, 0o755); err != nil {
		t.Fatal(err)
	}
	srcDir := filepath.Join(root, "src", "nested")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}

	got := ResolveLibPath(&File{}, srcDir)
	if got != libDir {
		t.Fatalf("ResolveLibPath() = %q, want %q", got, libDir)
	}
}

func TestResolveLibPathFallsBackToSnowHome(t *testing.T) {
	t.Setenv("SNOW_HOME", "/opt/snow")
	got := ResolveLibPath(&File{}, t.TempDir())
	want := filepath.Join("/opt/snow", "lib")
	if got != want {
		t.Fatalf("ResolveLibPath() = %q, want %q", got, want)
	}
}
