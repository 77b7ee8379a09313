// Package sema implements the two-pass semantic analyzer: pass 1 collects
// each module's globals and constants into per-module symbol tables and
// its struct declarations into the global tables; pass 2 walks every function, inferring and checking
// expression types and flagging missing returns. Errors accumulate in a
// diag.Bag rather than aborting the walk, so one run reports everything
// wrong with a program.
package sema

import (
	"strconv"
	"strings"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/diag"
	"github.com/snowlang/snow/internal/globals"
	"github.com/snowlang/snow/internal/types"
)

// moduleSymbols is the per-module symbol table built in pass 1.
type moduleSymbols struct {
	name      string
	globals   map[string]*types.Type
	constants map[string]*ast.Declaration
	structs   map[string]*ast.Struct
	functions map[string]*ast.Function
}

// Analyzer runs the two-pass analysis over a set of modules sharing one
// global table instance.
type Analyzer struct {
	Tables *globals.Tables
	Diags  *diag.Bag

	modules map[string]*moduleSymbols
	order   []string
}

func New(tables *globals.Tables) *Analyzer {
	return &Analyzer{
		Tables:  tables,
		Diags:   &diag.Bag{},
		modules: make(map[string]*moduleSymbols),
	}
}

// Analyze runs both passes over every module and returns whether the
// program is semantically valid (no Error-severity diagnostics).
func (a *Analyzer) Analyze(modules []*ast.Module) bool {
	for _, m := range modules {
		a.collectModule(m)
	}
	for _, m := range modules {
		a.checkModule(m)
	}
	return !a.Diags.HasErrors()
}

// --- Pass 1: collection ---

func (a *Analyzer) collectModule(m *ast.Module) {
	ms := &moduleSymbols{
		name:      m.Name,
		globals:   make(map[string]*types.Type),
		constants: make(map[string]*ast.Declaration),
		structs:   make(map[string]*ast.Struct),
		functions: make(map[string]*ast.Function),
	}
	a.modules[m.Name] = ms
	a.order = append(a.order, m.Name)

	for _, c := range m.Constants {
		if _, dup := ms.constants[c.Name]; dup {
			a.Diags.ErrorAt(c.Pos.File, c.Pos.Line, "duplicate constant declaration: %s", c.Name)
			continue
		}
		ms.constants[c.Name] = c
	}

	for _, g := range m.Globals {
		if _, dup := ms.globals[g.Name]; dup {
			a.Diags.ErrorAt(g.Pos.File, g.Pos.Line, "duplicate global declaration: %s", g.Name)
			continue
		}
		t, _ := types.FromName(g.TypeName)
		ms.globals[g.Name] = t
	}

	for _, s := range m.Structs {
		if _, dup := ms.structs[s.Name]; dup {
			a.Diags.ErrorAt(s.Pos.File, s.Pos.Line, "duplicate struct declaration: %s", s.Name)
			continue
		}
		ms.structs[s.Name] = s
		names := make([]string, len(s.Fields))
		fts := make([]*types.Type, len(s.Fields))
		for i, f := range s.Fields {
			names[i] = f.Name
			ft, _ := types.FromName(f.TypeName)
			fts[i] = ft
		}
		a.Tables.RegisterStruct(s.Name, names, fts)
		if s.Parent != "" {
			a.Tables.RegisterParent(s.Name, s.Parent)
		}
	}

	// Register each struct's constructor signature under its arity-qualified
	// name (matching internal/build's own registration) so a `new` call's
	// argument count and types can be checked here, before the builder runs.
	for _, s := range m.Structs {
		initParams := s.Fields
		if s.Init != nil {
			initParams = s.Init.Params
		}
		ctorName := s.Name + ".__init__" + strconv.Itoa(len(initParams)+1)
		a.Tables.RegisterFunction(ctorName, sigParamTypes(initParams), types.VoidType)
	}

	for _, f := range m.Functions {
		qualified := m.Name + "." + f.Name
		if _, dup := ms.functions[f.Name]; dup {
			a.Diags.ErrorAt(f.Pos.File, f.Pos.Line, "duplicate function declaration: %s", f.Name)
			continue
		}
		ms.functions[f.Name] = f
		rt, _ := types.FromName(f.ReturnType)
		a.Tables.RegisterFunction(qualified, sigParamTypes(f.Params), rt)
	}
}

// sigParamTypes resolves a parameter list's declared type names for
// registration in a function signature. An unresolvable name (e.g. a
// struct or array-suffixed type this pass doesn't special-case) falls back
// to AnyType, which is compatible with anything at the call site.
func sigParamTypes(params []*ast.Parameter) []*types.Type {
	out := make([]*types.Type, len(params))
	for i, p := range params {
		t, ok := types.FromName(p.TypeName)
		if !ok {
			t = types.AnyType
		}
		out[i] = t
	}
	return out
}

// --- Pass 2: checking ---

func (a *Analyzer) checkModule(m *ast.Module) {
	ms := a.modules[m.Name]
	for _, f := range m.Functions {
		a.checkFunction(ms, f)
	}
	for _, s := range m.Structs {
		if s.Init != nil {
			a.checkFunction(ms, s.Init)
		}
		for _, meth := range s.Methods {
			fn := &ast.Function{Pos: meth.Pos, Name: meth.Name, Params: meth.Params, ReturnType: meth.ReturnType, Body: meth.Body}
			a.checkFunction(ms, fn)
		}
	}
}

type funcScope struct {
	mod    *moduleSymbols
	locals map[string]*types.Type
}

func (s *funcScope) lookup(name string) (*types.Type, bool) {
	if t, ok := s.locals[name]; ok {
		return t, true
	}
	if t, ok := s.mod.globals[name]; ok {
		return t, true
	}
	if c, ok := s.mod.constants[name]; ok {
		t, _ := types.FromName(c.TypeName)
		return t, true
	}
	return nil, false
}

func (a *Analyzer) checkFunction(ms *moduleSymbols, f *ast.Function) {
	fs := &funcScope{mod: ms, locals: make(map[string]*types.Type)}
	for _, p := range f.Params {
		t, _ := types.FromName(p.TypeName)
		fs.locals[p.Name] = t
	}

	for _, stmt := range f.Body {
		a.checkStmt(fs, stmt)
	}

	retType, _ := types.FromName(f.ReturnType)
	if retType != nil && retType.Kind != types.Void {
		if !hasReturnOnAllPaths(f.Body) {
			a.Diags.ErrorAt(f.Pos.File, f.Pos.Line,
				"function %q is missing a return on some control-flow path", f.Name)
		}
	}
}

// hasReturnOnAllPaths is a conservative, syntactic check over the
// reducible if/else shape: a return is guaranteed only if the statement
// list ends in a return, or ends in an if/else whose both branches
// guarantee one.
func hasReturnOnAllPaths(body []ast.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	last := body[len(body)-1]
	switch s := last.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		if s.Else == nil {
			return false
		}
		return hasReturnOnAllPaths(s.Then) && hasReturnOnAllPaths(s.Else)
	default:
		return false
	}
}

func (a *Analyzer) checkStmt(fs *funcScope, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		t, _ := types.FromName(s.Decl.TypeName)
		if s.Decl.Initializer != nil {
			it := a.checkExpr(fs, s.Decl.Initializer)
			if t != nil && it != nil && !valueCompatible(it, s.Decl.Initializer, t) {
				if v, ok := constIntValue(s.Decl.Initializer); ok && t.Kind.IsIntegral() && it.Kind.IsIntegral() {
					a.Diags.ErrorAt(s.Decl.Pos.File, s.Decl.Pos.Line,
						"constant %d does not fit in %s for %s", v, t, s.Decl.Name)
				} else {
					a.Diags.ErrorAt(s.Decl.Pos.File, s.Decl.Pos.Line,
						"cannot initialize %s of type %s with value of type %s", s.Decl.Name, t, it)
				}
			}
		}
		fs.locals[s.Decl.Name] = t
	case *ast.AssignStmt:
		rt := a.checkExpr(fs, s.RHS)
		if lt, ok := fs.lookup(s.Name); ok && rt != nil && !types.Compatible(rt, lt) {
			a.Diags.ErrorAt(s.Pos.File, s.Pos.Line,
				"cannot assign %s to %s of type %s", rt, s.Name, lt)
		}
	case *ast.IndexAssignStmt:
		a.checkExpr(fs, s.Array)
		a.checkExpr(fs, s.Index)
		a.checkExpr(fs, s.RHS)
	case *ast.FieldAssignStmt:
		a.checkExpr(fs, s.Object)
		a.checkExpr(fs, s.RHS)
	case *ast.IfStmt:
		a.checkExpr(fs, s.Cond)
		for _, st := range s.Then {
			a.checkStmt(fs, st)
		}
		for _, st := range s.Else {
			a.checkStmt(fs, st)
		}
	case *ast.LoopStmt:
		if s.Init != nil {
			a.checkStmt(fs, &ast.DeclStmt{Decl: s.Init})
		}
		if s.Cond != nil {
			a.checkExpr(fs, s.Cond)
		}
		if s.Step != nil {
			a.checkStmt(fs, s.Step)
		}
		for _, st := range s.Body {
			a.checkStmt(fs, st)
		}
	case *ast.ExprStmt:
		a.checkExpr(fs, s.X)
	case *ast.ReturnStmt:
		if s.Value != nil {
			a.checkExpr(fs, s.Value)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
		// loop-context validity is enforced by the builder (§4.3); the
		// analyzer's job here is type checking only.
	}
}

func (a *Analyzer) checkExpr(fs *funcScope, e ast.Expr) *types.Type {
	switch x := e.(type) {
	case *ast.NumberLit:
		return classifyNumber(x.Text)
	case *ast.StringLit:
		return types.StringType
	case *ast.BoolLit:
		return types.BoolType
	case *ast.Identifier:
		if t, ok := fs.lookup(x.Name); ok {
			return t
		}
		if thisT, ok := fs.lookup("this"); ok && thisT != nil && thisT.Kind == types.Struct {
			if layout, ok := a.Tables.Struct(thisT.Name); ok {
				if ft := layout.FieldType(x.Name); ft != nil {
					return ft
				}
			}
		}
		a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "undefined identifier %q", x.Name)
		return nil
	case *ast.Member:
		a.checkExpr(fs, x.Object)
		return types.AnyType
	case *ast.Index:
		at := a.checkExpr(fs, x.Array)
		a.checkExpr(fs, x.Idx)
		if at != nil && at.Kind == types.Array {
			return at.Elem
		}
		return types.AnyType
	case *ast.ArrayLit:
		if len(x.Elements) == 0 {
			a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "cannot infer element type of empty array literal")
			return types.NewArray(types.IntType)
		}
		elemT := a.checkExpr(fs, x.Elements[0])
		for _, el := range x.Elements[1:] {
			t := a.checkExpr(fs, el)
			if elemT != nil && t != nil && !types.Identical(elemT, t) && !types.Widens(t, elemT) && !types.Widens(elemT, t) {
				a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "array literal element type mismatch: %s vs %s", elemT, t)
			}
		}
		return types.NewArray(elemT)
	case *ast.Call:
		return a.checkCall(fs, x)
	case *ast.New:
		layout, ok := a.Tables.Struct(x.TypeName)
		if !ok {
			a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "%q is not a registered struct type", x.TypeName)
			return types.AnyType
		}
		_ = layout
		argTypes := make([]*types.Type, len(x.Args))
		for i, arg := range x.Args {
			argTypes[i] = a.checkExpr(fs, arg)
		}
		ctorName := x.TypeName + ".__init__" + strconv.Itoa(len(x.Args)+1)
		if sig, ok := a.Tables.Function(ctorName); ok {
			a.checkArgs(x.Pos, x.TypeName, sig, x.Args, argTypes)
		} else {
			a.Diags.ErrorAt(x.Pos.File, x.Pos.Line,
				"%s has no constructor accepting %d argument(s)", x.TypeName, len(x.Args))
		}
		return types.NewStruct(x.TypeName, nil)
	case *ast.Unary:
		t := a.checkExpr(fs, x.Operand)
		switch x.Op {
		case ast.Neg:
			if t != nil && !t.Kind.IsNumeric() {
				a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "unary - requires a numeric operand, got %s", t)
			}
			return t
		case ast.Not:
			if t != nil && t.Kind != types.Bool {
				a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "unary ! requires a boolean operand, got %s", t)
			}
			return types.BoolType
		}
		return types.AnyType
	case *ast.Binary:
		return a.checkBinary(fs, x)
	}
	return types.AnyType
}

func (a *Analyzer) checkBinary(fs *funcScope, x *ast.Binary) *types.Type {
	lt := a.checkExpr(fs, x.Left)
	rt := a.checkExpr(fs, x.Right)
	if lt == nil || rt == nil {
		return types.AnyType
	}
	switch x.Op {
	case ast.Add:
		if lt.Kind == types.String || rt.Kind == types.String {
			return types.StringType
		}
		if lt.Kind.IsNumeric() && rt.Kind.IsNumeric() {
			return widerOf(lt, rt)
		}
		a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "operator + not defined for %s and %s", lt, rt)
		return types.AnyType
	case ast.Sub, ast.Mul, ast.Div, ast.Mod, ast.BitAnd, ast.BitOr, ast.BitXor, ast.Shl, ast.Shr:
		if lt.Kind.IsNumeric() && rt.Kind.IsNumeric() {
			return widerOf(lt, rt)
		}
		a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "arithmetic operator not defined for %s and %s", lt, rt)
		return types.AnyType
	case ast.Eq, ast.Ne:
		if lt.Kind == types.Bool && rt.Kind == types.Bool {
			return types.BoolType
		}
		if lt.Kind.IsNumeric() && rt.Kind.IsNumeric() {
			return types.BoolType
		}
		if types.Identical(lt, rt) {
			return types.BoolType
		}
		a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "cannot compare %s and %s", lt, rt)
		return types.BoolType
	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		if lt.Kind.IsNumeric() && rt.Kind.IsNumeric() {
			return types.BoolType
		}
		a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "comparison operator not defined for %s and %s", lt, rt)
		return types.BoolType
	case ast.LAnd, ast.LOr:
		if lt.Kind != types.Bool || rt.Kind != types.Bool {
			a.Diags.ErrorAt(x.Pos.File, x.Pos.Line, "&&/|| require boolean operands, got %s and %s", lt, rt)
		}
		return types.BoolType
	}
	return types.AnyType
}

func widerOf(a, b *types.Type) *types.Type {
	if types.Widens(a, b) {
		return b
	}
	return a
}

func (a *Analyzer) checkCall(fs *funcScope, call *ast.Call) *types.Type {
	argTypes := make([]*types.Type, len(call.Args))
	for i, arg := range call.Args {
		argTypes[i] = a.checkExpr(fs, arg)
	}
	name := calleeName(call.Callee)
	if name == "" {
		return types.AnyType
	}
	if strings.Contains(name, ".") {
		parts := strings.SplitN(name, ".", 2)
		mod, fn := parts[0], parts[1]
		if strings.HasPrefix(fn, "_") && mod != fs.mod.name {
			a.Diags.ErrorAt(call.Pos.File, call.Pos.Line,
				"cannot call private function %s.%s from module %s", mod, fn, fs.mod.name)
			return types.AnyType
		}
		if sig, ok := a.Tables.Function(name); ok {
			a.checkArgs(call.Pos, name, sig, call.Args, argTypes)
			return sig.ReturnType
		}
	}
	if sig, ok := a.Tables.Function(fs.mod.name + "." + name); ok {
		a.checkArgs(call.Pos, name, sig, call.Args, argTypes)
		return sig.ReturnType
	}
	return types.AnyType
}

// checkArgs enforces the call-site contract against a resolved signature:
// arity must match, and each argument must be compatible by identity,
// numeric widening, safe narrowing of a compile-time integer constant, or
// implicit numeric-to-string conversion. The built-in syscall target is
// never registered in Tables, so it never reaches here and its variadic
// arguments go unchecked.
func (a *Analyzer) checkArgs(pos ast.Pos, name string, sig *globals.FuncSig, args []ast.Expr, argTypes []*types.Type) {
	if len(args) != len(sig.Params) {
		a.Diags.ErrorAt(pos.File, pos.Line,
			"%s expects %d argument(s), got %d", name, len(sig.Params), len(args))
		return
	}
	for i, pt := range sig.Params {
		at := argTypes[i]
		if at == nil || pt == nil {
			continue
		}
		if !valueCompatible(at, args[i], pt) {
			a.Diags.ErrorAt(pos.File, pos.Line,
				"%s argument %d: cannot pass value of type %s as %s", name, i+1, at, pt)
		}
	}
}

func calleeName(e ast.Expr) string {
	switch c := e.(type) {
	case *ast.Identifier:
		return c.Name
	case *ast.Member:
		return calleeName(c.Object) + "." + c.Name
	}
	return ""
}

func classifyNumber(text string) *types.Type {
	if strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L") {
		return types.LongType
	}
	if strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
		return types.FloatType
	}
	if strings.ContainsAny(text, ".eE") {
		return types.DoubleType
	}
	return types.IntType
}

// valueCompatible reports whether an expression of static type from may
// flow into a slot of type to: identity, any<->any, numeric widening,
// safe narrowing of a compile-time integer constant into to's declared
// width, or implicit numeric-to-string conversion.
func valueCompatible(from *types.Type, expr ast.Expr, to *types.Type) bool {
	if types.Compatible(from, to) {
		return true
	}
	if to.Kind == types.String && from.Kind.IsNumeric() {
		return true
	}
	if to.Kind.IsIntegral() && from.Kind.IsIntegral() {
		if v, ok := constIntValue(expr); ok {
			return types.FitsConstInt(to.Kind, v)
		}
	}
	return false
}

// constIntValue evaluates the narrow set of expression shapes that can
// appear as a compile-time integer constant: an integer literal, optionally
// negated. Anything else (a variable, a non-integer literal, an arbitrary
// expression) isn't a constant as far as narrowing is concerned.
func constIntValue(e ast.Expr) (int64, bool) {
	switch x := e.(type) {
	case *ast.NumberLit:
		t := classifyNumber(x.Text)
		if !t.Kind.IsIntegral() {
			return 0, false
		}
		text := strings.TrimRight(x.Text, "lL")
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	case *ast.Unary:
		if x.Op == ast.Neg {
			if v, ok := constIntValue(x.Operand); ok {
				return -v, true
			}
		}
	}
	return 0, false
}
