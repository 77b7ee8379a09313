package build

import (
	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/diag"
	"github.com/snowlang/snow/internal/globals"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/scope"
	"github.com/snowlang/snow/internal/types"
)

// Prepass registers every module's constants, struct layouts, struct
// parents, and function/constructor/method signatures into tables before
// any function body is built, per §4.4's "in a pre-pass, register..."
// contract. Semantic analysis (internal/sema) already registers struct
// layouts, parent links, and plain-function signatures during its own
// pass 1 against the same Tables instance; RegisterStruct/RegisterParent/
// RegisterFunction are all register-once, so repeating that work here is
// harmless and lets this package build a program on its own (e.g. in
// tests) without requiring sema to have run first.
func Prepass(modules []*ast.Module, tables *globals.Tables) {
	for _, m := range modules {
		for _, s := range m.Structs {
			names := make([]string, len(s.Fields))
			fts := make([]*types.Type, len(s.Fields))
			for i, f := range s.Fields {
				names[i] = f.Name
				ft, ok := types.FromName(f.TypeName)
				if !ok {
					ft = types.AnyType
				}
				fts[i] = ft
			}
			tables.RegisterStruct(s.Name, names, fts)
			if s.Parent != "" {
				tables.RegisterParent(s.Name, s.Parent)
			}
		}

		for _, f := range m.Functions {
			rt, _ := types.FromName(f.ReturnType)
			tables.RegisterFunction(m.Name+"."+f.Name, paramTypes(f.Params), rt)
		}

		for _, s := range m.Structs {
			initParams := s.Fields
			initArity := constructorArity(s.Fields)
			if s.Init != nil {
				initParams = s.Init.Params
				initArity = methodArity(s.Init.Params)
			}
			tables.RegisterFunction(constructorName(s.Name, initArity), paramTypes(initParams), types.VoidType)

			for _, meth := range s.Methods {
				rt, _ := types.FromName(meth.ReturnType)
				tables.RegisterFunction(methodTarget(s.Name, meth.Name, methodArity(meth.Params)), paramTypes(meth.Params), rt)
			}
		}
	}

	for _, m := range modules {
		registerModuleConstants(m, tables)
	}
}

// registerModuleConstants folds each constant declaration (in declaration
// order, so a later constant may reference an earlier one in the same
// module) and registers its value under "Module.name".
func registerModuleConstants(m *ast.Module, tables *globals.Tables) {
	sc := scope.New()
	c := &Context{Tables: tables, Module: m.Name, Scope: sc, Diags: &diag.Bag{}}
	for _, cdecl := range m.Constants {
		v, ok := TryFold(c, cdecl.Initializer)
		if !ok {
			continue
		}
		tables.RegisterConstant(m.Name+"."+cdecl.Name, v)
		sc.Declare(cdecl.Name, ConstType(v), dummyFn)
		sc.SetConstValue(cdecl.Name, v)
	}
}

// dummyFn backs constant-folding scopes that never emit real instructions;
// registering a constant only needs a name->value binding, not a function
// body, so a single throwaway register source is reused across modules.
var dummyFn = ir.NewFunction("", "")

// BuildProgram lowers every module's functions, constructors, and methods
// into one ir.Program, wraps each module's top-level statements into a
// synthetic "_start" function (§4.4), and normalizes the entry point.
func BuildProgram(modules []*ast.Module, tables *globals.Tables, diags *diag.Bag) (*ir.Program, error) {
	Prepass(modules, tables)

	prog := ir.NewProgram()
	for _, m := range modules {
		for _, f := range m.Functions {
			fn, err := buildOneFunction(tables, diags, m.Name, m, funcSpec{
				qualifiedName: m.Name + "." + f.Name,
				params:        f.Params,
				returnType:    f.ReturnType,
				body:          f.Body,
				pos:           f.Pos,
			})
			if err != nil {
				return nil, err
			}
			prog.Add(fn)
		}

		for _, s := range m.Structs {
			if err := buildStructMembers(tables, diags, m, s, prog); err != nil {
				return nil, err
			}
		}

		if len(m.TopLevel) > 0 {
			fn, err := buildOneFunction(tables, diags, m.Name, m, funcSpec{
				qualifiedName: m.Name + "._start",
				returnType:    "void",
				body:          m.TopLevel,
				pos:           m.Pos,
			})
			if err != nil {
				return nil, err
			}
			prog.Add(fn)
		}
	}

	prog.Normalize()
	return prog, nil
}

func buildStructMembers(tables *globals.Tables, diags *diag.Bag, m *ast.Module, s *ast.Struct, prog *ir.Program) error {
	initParams := s.Fields
	initBody := implicitConstructorBody(s)
	if s.Init != nil {
		initParams = s.Init.Params
		initBody = s.Init.Body
	}
	initArity := methodArity(initParams)

	ctorFn, err := buildOneFunction(tables, diags, m.Name, m, funcSpec{
		qualifiedName: constructorName(s.Name, initArity),
		params:        initParams,
		returnType:    "void",
		body:          initBody,
		thisStruct:    s.Name,
		pos:           s.Pos,
	})
	if err != nil {
		return err
	}
	prog.Add(ctorFn)

	for _, meth := range s.Methods {
		methFn, err := buildOneFunction(tables, diags, m.Name, m, funcSpec{
			qualifiedName: methodTarget(s.Name, meth.Name, methodArity(meth.Params)),
			params:        meth.Params,
			returnType:    meth.ReturnType,
			body:          meth.Body,
			thisStruct:    s.Name,
			pos:           meth.Pos,
		})
		if err != nil {
			return err
		}
		prog.Add(methFn)
	}
	return nil
}

// implicitConstructorBody synthesizes "this.field = field" assignments for
// a struct with no explicit constructor, one per declared field, matching
// the positional-field-init convention an implicit __init__ provides.
func implicitConstructorBody(s *ast.Struct) []ast.Stmt {
	body := make([]ast.Stmt, 0, len(s.Fields))
	for _, f := range s.Fields {
		body = append(body, &ast.FieldAssignStmt{
			Object: &ast.Identifier{Name: "this"},
			Field:  f.Name,
			RHS:    &ast.Identifier{Name: f.Name},
		})
	}
	return body
}
