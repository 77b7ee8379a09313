package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

func TestCollectSnowFilesGathersExplicitAndDirFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(dir, "a.snow"),
		filepath.Join(sub, "b.snow"),
		filepath.Join(sub, "c.txt"),
	} {
		if err := os.WriteFile(p, []byte("# empty"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := CollectSnowFiles([]string{"explicit.snow"}, []string{dir})
	if err != nil {
		t.Fatalf("CollectSnowFiles: %v", err)
	}
	sort.Strings(got)

	want := []string{"explicit.snow", filepath.Join(dir, "a.snow"), filepath.Join(sub, "b.snow")}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestParseFilesStopsOnFirstError(t *testing.T) {
	d := &Driver{Parse: func(path string) (*ast.Module, error) {
		if path == "bad.snow" {
			return nil, os.ErrNotExist
		}
		return &ast.Module{Name: path}, nil
	}}
	if _, err := d.ParseFiles([]string{"good.snow", "bad.snow", "never.snow"}); err == nil {
		t.Fatal("expected ParseFiles to stop and report the bad path's error")
	}
}

func TestNewDriverDefaultsToUnwiredParse(t *testing.T) {
	d := New()
	if _, err := d.Parse("whatever.snow"); err == nil {
		t.Fatal("expected the default ParseFunc to fail clearly")
	}
}

func TestCompileReturnsSemanticErrorOnDuplicateConstant(t *testing.T) {
	dup := func(name string) *ast.Declaration {
		return &ast.Declaration{
			Pos:         ast.Pos{File: "m.snow", Line: 1},
			Name:        name,
			TypeName:    "int",
			IsConst:     true,
			Initializer: &ast.NumberLit{Text: "1"},
		}
	}
	mod := &ast.Module{
		Name:      "M",
		Constants: []*ast.Declaration{dup("X"), dup("X")},
	}

	_, err := New().Compile([]*ast.Module{mod})
	if err == nil {
		t.Fatal("expected a semantic error for the duplicate constant")
	}
	semErr, ok := err.(*SemanticError)
	if !ok {
		t.Fatalf("err = %T, want *SemanticError", err)
	}
	if len(semErr.Diags) == 0 {
		t.Fatal("expected at least one collected diagnostic")
	}
	if semErr.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestCloseOverImportsPrunesUnreachableModules(t *testing.T) {
	root := &ast.Module{Name: "Root", Imports: []string{"Used"}}
	used := &ast.Module{Name: "Used"}
	orphan := &ast.Module{Name: "Orphan", Imports: []string{"AlsoOrphan"}}
	alsoOrphan := &ast.Module{Name: "AlsoOrphan"}

	got := closeOverImports([]*ast.Module{root, used, orphan, alsoOrphan})

	names := make(map[string]bool, len(got))
	for _, m := range got {
		names[m.Name] = true
	}
	if !names["Root"] || !names["Used"] {
		t.Fatalf("expected Root and Used to survive closure, got %v", names)
	}
	if names["Orphan"] || names["AlsoOrphan"] {
		t.Fatalf("expected Orphan and AlsoOrphan to be pruned, got %v", names)
	}
}

func TestCloseOverImportsKeepsEntryModulesWithNoImports(t *testing.T) {
	a := &ast.Module{Name: "A"}
	b := &ast.Module{Name: "B"}
	got := closeOverImports([]*ast.Module{a, b})
	if len(got) != 2 {
		t.Fatalf("expected both no-import modules to survive as entry modules, got %d", len(got))
	}
}

func TestSimpleNameTakesLastDottedSegment(t *testing.T) {
	cases := map[string]string{
		"Standard.Sync": "Sync",
		"Console":       "Console",
		"a.b.c":         "c",
	}
	for in, want := range cases {
		if got := simpleName(in); got != want {
			t.Errorf("simpleName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmitAndRunRoundTrip(t *testing.T) {
	fn := ir.NewFunction("main", "int")
	a := fn.NewReg()
	b := fn.NewReg()
	a.Type, b.Type = types.IntType, types.IntType
	dest := fn.NewReg()
	dest.Type = types.IntType
	fn.Emit(ir.NewInstr(ir.LoadConst, a, ir.IntConst(4, types.Int)))
	fn.Emit(ir.NewInstr(ir.LoadConst, b, ir.IntConst(5, types.Int)))
	fn.Emit(ir.NewInstr(ir.AddI32, dest, a, b))
	fn.Emit(ir.NewInstr(ir.RetV, nil, dest))

	prog := ir.NewProgram()
	prog.Add(fn)

	var water bytes.Buffer
	if err := Emit(prog, &water); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	got, err := Run(bytes.NewReader(water.Bytes()), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.(int64) != 9 {
		t.Fatalf("Run result = %v, want 9", got)
	}
}

func TestRunWithTraceWritesInstructionLog(t *testing.T) {
	fn := ir.NewFunction("main", "int")
	dest := fn.NewReg()
	dest.Type = types.IntType
	fn.Emit(ir.NewInstr(ir.LoadConst, dest, ir.IntConst(1, types.Int)))
	fn.Emit(ir.NewInstr(ir.RetV, nil, dest))

	prog := ir.NewProgram()
	prog.Add(fn)

	var water bytes.Buffer
	if err := Emit(prog, &water); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var trace bytes.Buffer
	if _, err := Run(bytes.NewReader(water.Bytes()), RunOptions{Trace: &trace}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if trace.Len() == 0 {
		t.Fatal("expected Run with a Trace writer to produce trace output")
	}
}
