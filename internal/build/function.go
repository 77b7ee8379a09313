package build

import (
	"strconv"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/diag"
	"github.com/snowlang/snow/internal/globals"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/scope"
	"github.com/snowlang/snow/internal/types"
)

// funcSpec is everything buildOneFunction needs regardless of whether the
// source was a plain module function, a constructor, or a method: a
// qualified name, parameter list, return type, body, and (for
// constructors/methods) the owning struct.
type funcSpec struct {
	qualifiedName string
	params        []*ast.Parameter
	returnType    string
	body          []ast.Stmt
	thisStruct    string // empty for plain functions
	pos           ast.Pos
}

// buildOneFunction lowers one function body into an *ir.Function: creates a
// fresh scope, gives "this" (for constructors/methods) and the declared
// parameters the first registers, imports the module's constants, declares
// the parameters (a parameter hides a constant of the same name), and
// builds every statement in order (§4.4).
func buildOneFunction(tables *globals.Tables, diags *diag.Bag, module string, mod *ast.Module, spec funcSpec) (*ir.Function, error) {
	retType, _ := types.FromName(spec.returnType)
	if retType == nil {
		retType = types.VoidType
	}

	fn := ir.NewFunction(spec.qualifiedName, spec.returnType)
	sc := scope.New()

	c := &Context{
		Tables: tables,
		Diags:  diags,
		Module: module,
		Fn:     fn,
		Scope:  sc,
	}

	if spec.thisStruct != "" {
		thisType := types.NewStruct(spec.thisStruct, nil)
		c.thisType = thisType
		thisReg := fn.NewReg()
		thisReg.Type = thisType
		fn.AddParam(thisReg)
		sc.DeclareReg("this", thisType, thisReg)
	}

	// Parameter registers come before any body register, so they occupy
	// the local slots 0..k-1 that the VM's CALL copies the arguments into.
	paramRegs := make([]*ir.Register, len(spec.params))
	for i := range paramRegs {
		paramRegs[i] = fn.NewReg()
	}

	// Import the module's own constants into every function it declares,
	// each bound to a fresh register loaded at function entry (§4.4).
	for _, cdecl := range mod.Constants {
		if _, shadowed := sc.Lookup(cdecl.Name); shadowed {
			continue
		}
		v, ok := TryFold(c, cdecl.Initializer)
		if !ok {
			continue
		}
		reg := fn.NewReg()
		reg.Type = ConstType(v)
		fn.Emit(ir.NewInstr(ir.LoadConst, reg, v))
		sc.DeclareReg(cdecl.Name, reg.Type, reg)
		sc.SetConstValue(cdecl.Name, v)
	}

	for i, p := range spec.params {
		pt, _ := types.FromName(p.TypeName)
		if pt == nil {
			pt = resolveTypeName(c, p.TypeName)
		}
		reg := paramRegs[i]
		reg.Type = pt
		fn.AddParam(reg)
		sc.DeclareReg(p.Name, pt, reg)
	}

	err := c.WithDefaultSuffix(suffixDefaultFor(spec.returnType), func() error {
		for _, stmt := range spec.body {
			if err := c.BuildStmt(stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !endsInReturn(fn.Body) {
		if retType.Kind == types.Void {
			fn.Emit(ir.NewRet())
		}
		// Non-void functions missing a trailing return were already flagged
		// by semantic analysis (§4.5); the builder doesn't re-check here.
	}

	return fn, nil
}

func endsInReturn(body []*ir.Instr) bool {
	if len(body) == 0 {
		return false
	}
	switch body[len(body)-1].Op {
	case ir.Ret, ir.RetV:
		return true
	}
	return false
}

// paramTypes resolves a parameter list's declared type names, used to
// populate a registered function signature's Params for call-site arity
// and argument-compatibility checking.
func paramTypes(params []*ast.Parameter) []*types.Type {
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

func constructorArity(fields []*ast.Parameter) int {
	return len(fields) + 1 // +1 for "this"
}

func methodArity(params []*ast.Parameter) int {
	return len(params) + 1 // +1 for "this"
}

func constructorName(structName string, arity int) string {
	return structName + ".__init__" + strconv.Itoa(arity)
}
