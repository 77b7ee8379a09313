// Package config loads the optional project-level "snow.yaml" file and
// resolves the standard-library search path per spec.md §6, the modern
// stand-in for the source toolchain's "snow.lib property".
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the shape of "snow.yaml". Only Lib is consumed today; unknown
// keys are ignored rather than rejected, so a project's config can carry
// fields this toolchain doesn't read yet.
type File struct {
	Lib string `yaml:"lib"`
}

// Load reads and parses path. A missing file is not an error — it just
// means no project-level override exists — but a malformed one is.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ResolveLibPath implements spec.md §6's exact order: SNOW_LIB env var,
// then snow.yaml's lib: key, then the nearest ancestor lib/ directory of
// sourceRoot, then SNOW_HOME/lib. Returns "" if nothing resolves.
func ResolveLibPath(cfg *File, sourceRoot string) string {
	if v := os.Getenv("SNOW_LIB"); v != "" {
		return v
	}
	if cfg != nil && cfg.Lib != "" {
		return cfg.Lib
	}
	if dir, ok := nearestAncestorLib(sourceRoot); ok {
		return dir
	}
	if home := os.Getenv("SNOW_HOME"); home != "" {
		return filepath.Join(home, "lib")
	}
	return ""
}

// nearestAncestorLib walks up from start looking for a "lib" directory,
// stopping at the filesystem root.
func nearestAncestorLib(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, "lib")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
