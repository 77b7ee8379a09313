package sema

import (
	"testing"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/globals"
)

func declStmt(name, typeName string, init ast.Expr) *ast.DeclStmt {
	return &ast.DeclStmt{Decl: &ast.Declaration{
		Pos:         ast.Pos{File: "m.snow", Line: 1},
		Name:        name,
		TypeName:    typeName,
		Initializer: init,
	}}
}

func numberLit(text string) *ast.NumberLit { return &ast.NumberLit{Text: text} }

func analyzeFunc(body []ast.Stmt, fns ...*ast.Function) *Analyzer {
	mod := &ast.Module{Name: "M", Functions: append([]*ast.Function{
		{Name: "main", ReturnType: "void", Body: body},
	}, fns...)}
	a := New(globals.New())
	a.Analyze([]*ast.Module{mod})
	return a
}

func TestDeclNarrowingConstantWithinRangeSucceeds(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{declStmt("x", "byte", numberLit("127"))})
	if a.Diags.HasErrors() {
		t.Fatalf("declare x:byte = 127 should succeed, got %v", a.Diags.Strings())
	}
}

func TestDeclNarrowingConstantOutOfRangeFails(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{declStmt("x", "byte", numberLit("200"))})
	if !a.Diags.HasErrors() {
		t.Fatal("declare x:byte = 200 should fail to fit in byte")
	}
}

func TestDeclNarrowingNegativeWithinRangeSucceeds(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{declStmt("x", "byte", &ast.Unary{Op: ast.Neg, Operand: numberLit("128")})})
	if a.Diags.HasErrors() {
		t.Fatalf("declare x:byte = -128 should succeed, got %v", a.Diags.Strings())
	}
}

func TestDeclWideningSucceedsWithoutConstantCheck(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{declStmt("x", "long", numberLit("5"))})
	if a.Diags.HasErrors() {
		t.Fatalf("widening int literal into long should succeed, got %v", a.Diags.Strings())
	}
}

func helperFunc(params ...*ast.Parameter) *ast.Function {
	return &ast.Function{Name: "Helper", ReturnType: "int", Params: params, Body: []ast.Stmt{
		&ast.ReturnStmt{Value: numberLit("0")},
	}}
}

func callStmt(callee string, args ...ast.Expr) ast.Stmt {
	return &ast.ExprStmt{X: &ast.Call{Callee: &ast.Identifier{Name: callee}, Args: args}}
}

func TestCallArityMismatchFails(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{
		callStmt("Helper", numberLit("1"), numberLit("2")),
	}, helperFunc(&ast.Parameter{Name: "a", TypeName: "int"}))
	if !a.Diags.HasErrors() {
		t.Fatal("calling Helper(a:int) with 2 arguments should fail arity check")
	}
}

func TestCallArgumentTypeMismatchFails(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{
		callStmt("Helper", &ast.StringLit{Value: "hi"}),
	}, helperFunc(&ast.Parameter{Name: "a", TypeName: "int"}))
	if !a.Diags.HasErrors() {
		t.Fatal("calling Helper(a:int) with a string argument should fail")
	}
}

func TestCallNarrowingConstantArgumentSucceeds(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{
		callStmt("Helper", numberLit("100")),
	}, helperFunc(&ast.Parameter{Name: "a", TypeName: "byte"}))
	if a.Diags.HasErrors() {
		t.Fatalf("calling Helper(a:byte) with in-range constant 100 should succeed, got %v", a.Diags.Strings())
	}
}

func TestCallNarrowingConstantArgumentOutOfRangeFails(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{
		callStmt("Helper", numberLit("1000")),
	}, helperFunc(&ast.Parameter{Name: "a", TypeName: "byte"}))
	if !a.Diags.HasErrors() {
		t.Fatal("calling Helper(a:byte) with out-of-range constant 1000 should fail")
	}
}

func TestCallMatchingArityAndTypesSucceeds(t *testing.T) {
	a := analyzeFunc([]ast.Stmt{
		callStmt("Helper", numberLit("1")),
	}, helperFunc(&ast.Parameter{Name: "a", TypeName: "int"}))
	if a.Diags.HasErrors() {
		t.Fatalf("calling Helper(a:int) with one int argument should succeed, got %v", a.Diags.Strings())
	}
}

func pointStruct() *ast.Struct {
	return &ast.Struct{
		Name: "Point",
		Fields: []*ast.Parameter{
			{Name: "x", TypeName: "int"},
			{Name: "y", TypeName: "int"},
		},
	}
}

func TestConstructorArityMismatchFails(t *testing.T) {
	mod := &ast.Module{
		Name:    "M",
		Structs: []*ast.Struct{pointStruct()},
		Functions: []*ast.Function{{
			Name:       "main",
			ReturnType: "void",
			Body: []ast.Stmt{
				&ast.ExprStmt{X: &ast.New{TypeName: "Point", Args: []ast.Expr{numberLit("1")}}},
			},
		}},
	}
	a := New(globals.New())
	a.Analyze([]*ast.Module{mod})
	if !a.Diags.HasErrors() {
		t.Fatal("new Point(1) against a two-field struct should fail")
	}
}

func TestConstructorMatchingArityAndTypesSucceeds(t *testing.T) {
	mod := &ast.Module{
		Name:    "M",
		Structs: []*ast.Struct{pointStruct()},
		Functions: []*ast.Function{{
			Name:       "main",
			ReturnType: "void",
			Body: []ast.Stmt{
				&ast.ExprStmt{X: &ast.New{TypeName: "Point", Args: []ast.Expr{numberLit("1"), numberLit("2")}}},
			},
		}},
	}
	a := New(globals.New())
	a.Analyze([]*ast.Module{mod})
	if a.Diags.HasErrors() {
		t.Fatalf("new Point(1, 2) against a two-field struct should succeed, got %v", a.Diags.Strings())
	}
}
