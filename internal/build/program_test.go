package build

import (
	"bytes"
	"testing"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/diag"
	"github.com/snowlang/snow/internal/emit"
	"github.com/snowlang/snow/internal/globals"
	"github.com/snowlang/snow/internal/vm"
	vmsyscall "github.com/snowlang/snow/internal/vm/syscall"
)

// runModule lowers mod through BuildProgram, emits it as ".water" text,
// loads that text back, and runs name to completion. This mirrors
// internal/driver's own Emit/Run sequence by hand, since importing
// internal/driver here would cycle back through this package.
func runModule(t *testing.T, mod *ast.Module, name string) vm.Value {
	t.Helper()

	tables := globals.New()
	diags := &diag.Bag{}
	prog, err := BuildProgram([]*ast.Module{mod}, tables, diags)
	if err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	if diags.HasErrors() {
		t.Fatalf("BuildProgram reported diagnostics: %v", diags.Strings())
	}

	var water bytes.Buffer
	if err := emit.New(&water).Emit(prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	cprog, err := vm.Load(&water)
	if err != nil {
		t.Fatalf("vm.Load: %v", err)
	}
	table := vmsyscall.New()
	machine := vm.New(cprog, table)
	table.SetHost(machine)

	result, err := machine.Call(name, nil)
	if err != nil {
		t.Fatalf("machine.Call(%q): %v", name, err)
	}
	return result
}

// pointStructDecl is a two-field struct with no explicit constructor, so
// the implicit "this.x = x; this.y = y" body exercises buildNew's
// struct-branch pre-sizing of the LOAD_CONST that backs "this".
func pointStructDecl() *ast.Struct {
	return &ast.Struct{
		Name: "Point",
		Fields: []*ast.Parameter{
			{Name: "x", TypeName: "int"},
			{Name: "y", TypeName: "int"},
		},
	}
}

func numLit(text string) *ast.NumberLit { return &ast.NumberLit{Text: text} }

// TestBuildNewAllocatesEnoughSlotsForEveryField builds "new Point(3, 4)"
// then reads both fields back, running the whole thing through the VM.
// Before buildNew pre-sized its LOAD_CONST to the struct's field count,
// the implicit constructor's first "this.x = x" write trapped on a
// zero-length object.
func TestBuildNewAllocatesEnoughSlotsForEveryField(t *testing.T) {
	mod := &ast.Module{
		Name:    "M",
		Structs: []*ast.Struct{pointStructDecl()},
		Functions: []*ast.Function{{
			Name:       "main",
			ReturnType: "int",
			Body: []ast.Stmt{
				&ast.DeclStmt{Decl: &ast.Declaration{
					Name: "p",
					Initializer: &ast.New{
						TypeName: "Point",
						Args:     []ast.Expr{numLit("3"), numLit("4")},
					},
				}},
				&ast.ReturnStmt{Value: &ast.Binary{
					Op:    ast.Add,
					Left:  &ast.Member{Object: &ast.Identifier{Name: "p"}, Name: "x"},
					Right: &ast.Member{Object: &ast.Identifier{Name: "p"}, Name: "y"},
				}},
			},
		}},
	}

	got := runModule(t, mod, "M.main")
	if got.(int64) != 7 {
		t.Fatalf("new Point(3, 4); return p.x + p.y = %v, want 7", got)
	}
}

// TestBuildArrayLitAllocatesEnoughSlotsWhenNotConstFoldable builds an
// array literal whose elements reference a parameter, so TryFold can't
// fold it to a constant and buildArrayLit must take its per-element
// __setindex_* path. Before that path pre-sized its LOAD_CONST to the
// element count, the first write trapped on a zero-length array.
func TestBuildArrayLitAllocatesEnoughSlotsWhenNotConstFoldable(t *testing.T) {
	mod := &ast.Module{
		Name: "M",
		Functions: []*ast.Function{{
			Name:       "build",
			ReturnType: "int",
			Params:     []*ast.Parameter{{Name: "n", TypeName: "int"}},
			Body: []ast.Stmt{
				&ast.DeclStmt{Decl: &ast.Declaration{
					Name: "xs",
					Initializer: &ast.ArrayLit{Elements: []ast.Expr{
						&ast.Identifier{Name: "n"},
						&ast.Binary{Op: ast.Add, Left: &ast.Identifier{Name: "n"}, Right: numLit("1")},
						&ast.Binary{Op: ast.Add, Left: &ast.Identifier{Name: "n"}, Right: numLit("2")},
					}},
				}},
				&ast.ReturnStmt{Value: &ast.Index{
					Array: &ast.Identifier{Name: "xs"},
					Idx:   numLit("2"),
				}},
			},
		}, {
			Name:       "main",
			ReturnType: "int",
			Body: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.Call{
					Callee: &ast.Identifier{Name: "build"},
					Args:   []ast.Expr{numLit("10")},
				}},
			},
		}},
	}

	got := runModule(t, mod, "M.main")
	if got.(int64) != 12 {
		t.Fatalf("build(10)[2] = %v, want 12", got)
	}
}
