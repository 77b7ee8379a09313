package build

import (
	"strconv"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

// buildArgs lowers a call's argument list left-to-right.
func (c *Context) buildArgs(args []ast.Expr) ([]*ir.Register, error) {
	out := make([]*ir.Register, len(args))
	for i, a := range args {
		r, err := c.Build(a)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func prepend(first *ir.Register, rest []*ir.Register) []ir.Value {
	out := make([]ir.Value, 0, len(rest)+1)
	out = append(out, first)
	out = append(out, regsToValues(rest)...)
	return out
}

func methodTarget(structName, method string, arityIncludingThis int) string {
	return structName + "." + method + "_" + strconv.Itoa(arityIncludingThis)
}

// buildCall implements the six callee-resolution rules of §4.2.
func (c *Context) buildCall(x *ast.Call, dest *ir.Register) error {
	switch callee := x.Callee.(type) {
	case *ast.Identifier:
		if callee.Name == "super" {
			return c.buildSuperInit(x, dest)
		}
		if callee.Name == "syscall" {
			return c.buildSyscall(x, dest)
		}
		// Rule 6: bare identifier, rewritten to same-module qualification
		// when it names a function of the current module.
		argRegs, err := c.buildArgs(x.Args)
		if err != nil {
			return err
		}
		target := callee.Name
		if _, ok := c.Tables.Function(c.Module + "." + callee.Name); ok {
			target = c.Module + "." + callee.Name
		}
		c.Fn.Emit(ir.NewCall(dest, target, regsToValues(argRegs)...))
		return nil

	case *ast.Member:
		return c.buildMethodCall(x, callee, dest)
	}
	return errf("%s: unsupported call target", pos(x))
}

// buildSuperInit lowers super(...) inside a constructor to Parent.__init__N.
func (c *Context) buildSuperInit(x *ast.Call, dest *ir.Register) error {
	if c.thisType == nil {
		return errf("%s: super(...) used outside a constructor", pos(x))
	}
	parent, ok := c.Tables.Parent(c.thisType.Name)
	if !ok || parent == "" {
		return errf("%s: %q has no parent struct", pos(x), c.thisType.Name)
	}
	argRegs, err := c.buildArgs(x.Args)
	if err != nil {
		return err
	}
	target := parent + ".__init__" + strconv.Itoa(len(argRegs)+1)
	c.Fn.Emit(ir.NewCall(dest, target, prepend(thisRegister(c), argRegs)...))
	return nil
}

func (c *Context) buildMethodCall(x *ast.Call, callee *ast.Member, dest *ir.Register) error {
	obj, objIsIdent := callee.Object.(*ast.Identifier)

	if objIsIdent && obj.Name == "super" {
		// Rule 2: super.m(...) inside a method.
		if c.thisType == nil {
			return errf("%s: super.%s(...) used outside a method", pos(x), callee.Name)
		}
		parent, ok := c.Tables.Parent(c.thisType.Name)
		if !ok || parent == "" {
			return errf("%s: %q has no parent struct", pos(x), c.thisType.Name)
		}
		argRegs, err := c.buildArgs(x.Args)
		if err != nil {
			return err
		}
		target := methodTarget(parent, callee.Name, len(argRegs)+1)
		c.Fn.Emit(ir.NewCall(dest, target, prepend(thisRegister(c), argRegs)...))
		return nil
	}

	if objIsIdent {
		if regT, isVar := c.Scope.LookupType(obj.Name); isVar {
			if regT != nil && regT.Kind == types.Struct {
				// Rule 3: receiver has a known struct type.
				recvReg, _ := c.Scope.Lookup(obj.Name)
				argRegs, err := c.buildArgs(x.Args)
				if err != nil {
					return err
				}
				target := methodTarget(regT.Name, callee.Name, len(argRegs)+1)
				c.Fn.Emit(ir.NewCall(dest, target, prepend(recvReg, argRegs)...))
				return nil
			}
			// Rule 4: receiver's type is unknown — static qualifier, no
			// "this"/receiver prepended.
			argRegs, err := c.buildArgs(x.Args)
			if err != nil {
				return err
			}
			target := obj.Name + "." + callee.Name
			c.Fn.Emit(ir.NewCall(dest, target, regsToValues(argRegs)...))
			return nil
		}
		// obj is not a declared local/param: treat as a module qualifier
		// (e.g. Math.factorial), also rule 4's "static qualifier" shape.
		argRegs, err := c.buildArgs(x.Args)
		if err != nil {
			return err
		}
		target := obj.Name + "." + callee.Name
		c.Fn.Emit(ir.NewCall(dest, target, regsToValues(argRegs)...))
		return nil
	}

	// Rule 5: obj is a general expression; evaluate it and prepend as the
	// receiver to an arity-selected method target.
	recvReg, err := c.Build(callee.Object)
	if err != nil {
		return err
	}
	argRegs, err := c.buildArgs(x.Args)
	if err != nil {
		return err
	}
	objType := recvReg.Type
	var target string
	if objType != nil && objType.Kind == types.Struct {
		target = methodTarget(objType.Name, callee.Name, len(argRegs)+1)
	} else {
		target = callee.Name + "_" + strconv.Itoa(len(argRegs)+1)
	}
	c.Fn.Emit(ir.NewCall(dest, target, prepend(recvReg, argRegs)...))
	return nil
}
