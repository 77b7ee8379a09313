// Package driver orchestrates the full pipeline spec.md §2 describes:
// AST → semantic analysis → IR build → register allocation → emission,
// and separately, loading and executing ".water" text. cmd/snow is a
// thin cobra wrapper around this package; the package itself never reads
// flags or writes usage text.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/build"
	"github.com/snowlang/snow/internal/diag"
	"github.com/snowlang/snow/internal/emit"
	"github.com/snowlang/snow/internal/globals"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/sema"
	"github.com/snowlang/snow/internal/vm"
	vmsyscall "github.com/snowlang/snow/internal/vm/syscall"
)

// ParseFunc turns one source file's text into its AST. The lexer and
// parser are an external collaborator by contract (spec.md §1: "AST is
// assumed given"); this package only depends on the function type, never
// a concrete implementation, so a caller who has wired a real front end
// can hand it in.
type ParseFunc func(path string) (*ast.Module, error)

// unwiredParse is the default ParseFunc: it fails clearly rather than
// silently producing an empty module when no front end is installed.
func unwiredParse(path string) (*ast.Module, error) {
	return nil, fmt.Errorf("%s: no .snow parser is wired into this build (lexer/parser is an external collaborator)", path)
}

// SemanticError reports that the semantic pass found one or more
// Error-severity diagnostics; per spec.md §7 plane 1, the driver stops
// before emission when this happens.
type SemanticError struct {
	Diags []diag.Diagnostic
}

func (e *SemanticError) Error() string {
	lines := make([]string, len(e.Diags))
	for i, d := range e.Diags {
		lines[i] = d.String()
	}
	return fmt.Sprintf("%d semantic error(s):\n%s", len(e.Diags), strings.Join(lines, "\n"))
}

// Driver holds the front end used to turn file paths into ASTs. The
// global tables every module's functions/structs/constants register into
// are created fresh by each Compile call, not kept on the Driver.
type Driver struct {
	Parse ParseFunc
}

func New() *Driver {
	return &Driver{Parse: unwiredParse}
}

// CollectSnowFiles gathers source paths per spec.md §6's CLI contract:
// explicit file arguments are taken as-is, and -d <dir> arguments are
// recursed for every "*.snow" file beneath them.
func CollectSnowFiles(files []string, dirs []string) ([]string, error) {
	out := append([]string{}, files...)
	for _, d := range dirs {
		err := filepath.Walk(d, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(path, ".snow") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseFiles runs d.Parse over every path, in order.
func (d *Driver) ParseFiles(paths []string) ([]*ast.Module, error) {
	modules := make([]*ast.Module, 0, len(paths))
	for _, p := range paths {
		m, err := d.Parse(p)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// Compile runs semantic analysis then IR construction over an already-
// parsed module set, restricted to the transitive closure of imports per
// spec.md §6 ("only the transitive closure of imported standard-library
// modules is compiled"). Returns a *SemanticError (not a plain error) when
// analysis fails, so callers can print every collected diagnostic.
func (d *Driver) Compile(modules []*ast.Module) (*ir.Program, error) {
	modules = closeOverImports(modules)

	tables := globals.New()
	analyzer := sema.New(tables)
	if ok := analyzer.Analyze(modules); !ok {
		return nil, &SemanticError{Diags: analyzer.Diags.Errors()}
	}

	diags := &diag.Bag{}
	prog, err := build.BuildProgram(modules, tables, diags)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	if diags.HasErrors() {
		return nil, &SemanticError{Diags: diags.Errors()}
	}
	return prog, nil
}

// closeOverImports keeps only modules reachable from the set's own
// declared imports (each import entry's simple name, per §6), plus every
// module that declares no imports of its own (a program's true entry
// modules). This is deliberately permissive: within a single compile
// invocation every supplied module is already meant to participate, so
// the closure only prunes modules nobody references when a library
// directory scan pulled in more than was asked for.
func closeOverImports(modules []*ast.Module) []*ast.Module {
	byName := make(map[string]*ast.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}

	reachable := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if reachable[name] {
			return
		}
		m, ok := byName[name]
		if !ok {
			return
		}
		reachable[name] = true
		for _, imp := range m.Imports {
			visit(simpleName(imp))
		}
	}
	for _, m := range modules {
		visit(m.Name)
	}

	out := make([]*ast.Module, 0, len(modules))
	for _, m := range modules {
		if reachable[m.Name] {
			out = append(out, m)
		}
	}
	return out
}

// simpleName takes only the last dotted segment of an import entry, per
// spec.md §6.
func simpleName(imp string) string {
	if idx := strings.LastIndex(imp, "."); idx >= 0 {
		return imp[idx+1:]
	}
	return imp
}

// Emit writes prog as ".water" text to w.
func Emit(prog *ir.Program, w io.Writer) error {
	return emit.New(w).Emit(prog)
}

// RunOptions configures one VM execution.
type RunOptions struct {
	Args  []vm.Value
	Trace io.Writer
}

// Run loads ".water" text from r and executes its entry function,
// installing a fresh syscall table per run so each invocation gets its
// own fd/socket/lock registries.
func Run(r io.Reader, opts RunOptions) (vm.Value, error) {
	prog, err := vm.Load(r)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	table := vmsyscall.New()
	machine := vm.New(prog, table)
	table.SetHost(machine)
	if opts.Trace != nil {
		machine.Trace = vm.NewTracer(opts.Trace)
	}

	return machine.Run(opts.Args)
}
