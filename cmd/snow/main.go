package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snowlang/snow/internal/config"
	"github.com/snowlang/snow/internal/driver"
)

// Exit codes per spec.md §6: 0 success; non-zero on argument error,
// lex/parse error, semantic error, or runtime failure. The pipeline
// doesn't distinguish those causes at the process-exit level beyond
// "something failed", matching the CLI contract's own wording.
const (
	exitOK    = 0
	exitError = 1
)

var (
	libDirs   []string
	outName   string
	runAfter  bool
	debugFlag bool
	traceFlag bool
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	rootCmd := newRootCmd(out, errOut)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return exitError
	}
	return exitOK
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "snow [paths...] [run]",
		Short:         "snow compiles and runs programs in the Snow language",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doCompile(args, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringArrayVarP(&libDirs, "dir", "d", nil, "recurse this directory for .snow sources")
	rootCmd.Flags().StringVarP(&outName, "out", "o", "", "output base name (.water suffix added if missing)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "verbose diagnostic output")
	rootCmd.Flags().BoolVar(&traceFlag, "trace", false, "per-instruction VM trace when running")

	return rootCmd
}

// doCompile implements the "snow [file.snow ...] [-d dir ...] [-o name]
// [run] [--debug] [--trace]" token grammar from spec.md §6. "run" may
// appear anywhere among the positional arguments; everything else
// positional is a .snow source path.
func doCompile(args []string, out, errOut io.Writer) error {
	var files []string
	for _, a := range args {
		if a == "run" {
			runAfter = true
			continue
		}
		files = append(files, a)
	}
	if len(files) == 0 && len(libDirs) == 0 {
		return fmt.Errorf("snow: no source files given")
	}

	paths, err := driver.CollectSnowFiles(files, libDirs)
	if err != nil {
		return fmt.Errorf("snow: %w", err)
	}

	cfg, err := config.Load("snow.yaml")
	if err != nil {
		return fmt.Errorf("snow: reading snow.yaml: %w", err)
	}
	libPath := config.ResolveLibPath(cfg, sourceRoot(paths))
	if debugFlag && libPath != "" {
		fmt.Fprintf(errOut, "snow: using library path %s\n", libPath)
	}

	d := driver.New()
	modules, err := d.ParseFiles(paths)
	if err != nil {
		return fmt.Errorf("snow: %w", err)
	}

	prog, err := d.Compile(modules)
	if err != nil {
		if sema, ok := err.(*driver.SemanticError); ok {
			for _, diag := range sema.Diags {
				fmt.Fprintln(errOut, diag.String())
			}
		}
		return err
	}

	waterName := resolveOutName(outName, paths)
	f, err := os.Create(waterName)
	if err != nil {
		return fmt.Errorf("snow: creating %s: %w", waterName, err)
	}
	if err := driver.Emit(prog, f); err != nil {
		f.Close()
		return fmt.Errorf("snow: emitting %s: %w", waterName, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("snow: %w", err)
	}
	if debugFlag {
		fmt.Fprintf(errOut, "snow: wrote %s\n", waterName)
	}

	if !runAfter {
		return nil
	}

	waterFile, err := os.Open(waterName)
	if err != nil {
		return fmt.Errorf("snow: %w", err)
	}
	defer waterFile.Close()

	var traceOut io.Writer
	if traceFlag {
		traceOut = errOut
	}
	_, err = driver.Run(waterFile, driver.RunOptions{Trace: traceOut})
	if err != nil {
		return fmt.Errorf("snow: run: %w", err)
	}
	return nil
}

// resolveOutName applies spec.md §6's "-o <name>, .water suffix added if
// missing" rule, defaulting to the first source file's base name when -o
// wasn't given.
func resolveOutName(name string, paths []string) string {
	if name == "" {
		if len(paths) > 0 {
			base := filepath.Base(paths[0])
			name = strings.TrimSuffix(base, filepath.Ext(base))
		} else {
			name = "a"
		}
	}
	if !strings.HasSuffix(name, ".water") {
		name += ".water"
	}
	return name
}

// sourceRoot picks the directory library resolution treats as the
// source root: the directory containing the first given path, or the
// working directory if none were given.
func sourceRoot(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	return filepath.Dir(paths[0])
}
