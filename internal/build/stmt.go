package build

import (
	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

// BuildStmt lowers one statement (§4.3).
func (c *Context) BuildStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		return c.buildDecl(s)
	case *ast.AssignStmt:
		return c.buildAssign(s)
	case *ast.IndexAssignStmt:
		return c.buildIndexAssign(s)
	case *ast.FieldAssignStmt:
		return c.buildFieldAssign(s)
	case *ast.IfStmt:
		return c.buildIf(s)
	case *ast.LoopStmt:
		return c.buildLoop(s)
	case *ast.ExprStmt:
		_, err := c.Build(s.X)
		return err
	case *ast.ReturnStmt:
		return c.buildReturn(s)
	case *ast.BreakStmt:
		lt, ok := c.currentLoop()
		if !ok {
			return errf("%s: break used outside a loop", pos(s))
		}
		c.Fn.Emit(ir.NewJump(lt.breakLabel))
		return nil
	case *ast.ContinueStmt:
		lt, ok := c.currentLoop()
		if !ok {
			return errf("%s: continue used outside a loop", pos(s))
		}
		c.Fn.Emit(ir.NewJump(lt.continueLabel))
		return nil
	}
	return errf("%s: unsupported statement", pos(stmt))
}

// emitCondJumpToFalse implements the conditional-jump emission contract of
// §4.3: for a binary comparison, pick the width-correct CMP and emit the
// inverted opcode so the jump fires on false; for any other expression,
// evaluate it and emit CMP_IEQ reg,0 -> falseLabel.
func (c *Context) emitCondJumpToFalse(cond ast.Expr, falseLabel ir.Label) error {
	if bin, ok := cond.(*ast.Binary); ok {
		switch bin.Op {
		case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge:
			lReg, err := c.Build(bin.Left)
			if err != nil {
				return err
			}
			rReg, err := c.Build(bin.Right)
			if err != nil {
				return err
			}
			width := widestOf(lReg.Type, rReg.Type)
			if width == nil {
				width = types.IntType
			}
			oc, ok := ir.CompareJumpOpcode(opSymbol(bin.Op), width.Kind)
			if !ok {
				return errf("%s: comparison not supported for type %s", pos(bin), width)
			}
			inv, ok := ir.InvertCompare(oc)
			if !ok {
				return errf("%s: internal error: no inverse for %s", pos(bin), oc)
			}
			c.Fn.Emit(ir.NewCompareJump(inv, lReg, rReg, falseLabel))
			return nil
		}
	}
	condReg, err := c.Build(cond)
	if err != nil {
		return err
	}
	c.Fn.Emit(ir.NewCompareJump(ir.CmpIEqJump, condReg, ir.Zero(types.Int), falseLabel))
	return nil
}

func (c *Context) buildIf(s *ast.IfStmt) error {
	lelse := c.Fn.NewLabel()
	lend := c.Fn.NewLabel()

	if err := c.emitCondJumpToFalse(s.Cond, lelse); err != nil {
		return err
	}
	for _, st := range s.Then {
		if err := c.BuildStmt(st); err != nil {
			return err
		}
	}
	c.Fn.Emit(ir.NewJump(lend))
	c.Fn.Emit(ir.NewLabelInstr(lelse))
	for _, st := range s.Else {
		if err := c.BuildStmt(st); err != nil {
			return err
		}
	}
	c.Fn.Emit(ir.NewLabelInstr(lend))
	return nil
}

func (c *Context) buildLoop(s *ast.LoopStmt) error {
	if s.Init != nil {
		if err := c.buildDecl(&ast.DeclStmt{Decl: s.Init}); err != nil {
			return err
		}
	}

	lstart := c.Fn.NewLabel()
	lstep := c.Fn.NewLabel()
	lend := c.Fn.NewLabel()

	c.Fn.Emit(ir.NewLabelInstr(lstart))
	if s.Cond != nil {
		if err := c.emitCondJumpToFalse(s.Cond, lend); err != nil {
			return err
		}
	}

	c.pushLoop(lend, lstep)
	for _, st := range s.Body {
		if err := c.BuildStmt(st); err != nil {
			c.popLoop()
			return err
		}
	}
	c.popLoop()

	c.Fn.Emit(ir.NewLabelInstr(lstep))
	if s.Step != nil {
		if err := c.BuildStmt(s.Step); err != nil {
			return err
		}
	}
	c.Fn.Emit(ir.NewJump(lstart))
	c.Fn.Emit(ir.NewLabelInstr(lend))
	return nil
}

func (c *Context) buildReturn(s *ast.ReturnStmt) error {
	if s.Value == nil {
		c.Fn.Emit(ir.NewRet())
		return nil
	}
	v, err := c.Build(s.Value)
	if err != nil {
		return err
	}
	c.Fn.Emit(ir.NewRetV(v))
	return nil
}

// resolveTypeName resolves a source-level type name to a *types.Type,
// extending types.FromName with struct and array-suffix resolution against
// the registered struct layouts (mirrors the analyzer's own FromName-first,
// nil-on-unknown convention — an unresolved name simply falls back to the
// initializer's inferred type).
func resolveTypeName(c *Context, name string) *types.Type {
	if t, ok := types.FromName(name); ok {
		return t
	}
	if len(name) > 2 && name[len(name)-2:] == "[]" {
		return types.NewArray(resolveTypeName(c, name[:len(name)-2]))
	}
	if _, ok := c.Tables.Struct(name); ok {
		return types.NewStruct(name, nil)
	}
	return nil
}

func (c *Context) buildDecl(s *ast.DeclStmt) error {
	d := s.Decl
	declaredType := resolveTypeName(c, d.TypeName)

	if d.Initializer == nil {
		c.Scope.Declare(d.Name, declaredType, c.Fn)
		return nil
	}

	// Narrow Base x = new Sub(...) to the constructed subtype for static
	// polymorphism in later method dispatch (§4.3).
	if n, ok := d.Initializer.(*ast.New); ok && declaredType != nil && declaredType.Kind == types.Struct {
		if isSubtype(c, n.TypeName, declaredType.Name) {
			declaredType = types.NewStruct(n.TypeName, nil)
		}
	}

	fresh := c.Fn.NewReg() // never alias an existing variable's register
	if err := c.BuildInto(d.Initializer, fresh); err != nil {
		return err
	}
	if declaredType == nil {
		declaredType = fresh.Type
	}
	fresh.Type = declaredType

	c.Scope.DeclareReg(d.Name, declaredType, fresh)
	if v, ok := TryFold(c, d.Initializer); ok {
		c.Scope.SetConstValue(d.Name, v)
	}
	return nil
}

func isSubtype(c *Context, child, ancestor string) bool {
	if child == ancestor {
		return true
	}
	chain, err := c.Tables.Ancestors(child)
	if err != nil {
		return false
	}
	for _, a := range chain {
		if a == ancestor {
			return true
		}
	}
	return false
}

func (c *Context) buildAssign(s *ast.AssignStmt) error {
	if reg, ok := c.Scope.Lookup(s.Name); ok {
		if err := c.BuildInto(s.RHS, reg); err != nil {
			return err
		}
		if v, ok := TryFold(c, s.RHS); ok {
			c.Scope.SetConstValue(s.Name, v)
		} else {
			c.Scope.ClearConstValue(s.Name)
		}
		return nil
	}

	if c.thisType != nil {
		if layout, ok := c.Tables.Struct(c.thisType.Name); ok {
			if slot := layout.SlotOf(s.Name); slot >= 0 {
				rhsReg, err := c.Build(s.RHS)
				if err != nil {
					return err
				}
				fieldType := layout.FieldType(s.Name)
				setOp := ir.SetIndexOpcode(fieldType)
				c.Fn.Emit(ir.NewInstr(ir.Opcode(setOp), nil, thisRegister(c), ir.IntConst(int64(slot), types.Int), rhsReg))
				return nil
			}
		}
	}

	// Implicit local declaration.
	targetType := StaticType(c, s.RHS)
	fresh := c.Scope.Declare(s.Name, targetType, c.Fn)
	return c.BuildInto(s.RHS, fresh)
}

func (c *Context) buildIndexAssign(s *ast.IndexAssignStmt) error {
	arrReg, err := c.Build(s.Array)
	if err != nil {
		return err
	}
	idxReg, err := c.Build(s.Index)
	if err != nil {
		return err
	}
	rhsReg, err := c.Build(s.RHS)
	if err != nil {
		return err
	}
	elemType := arrReg.Type
	if elemType != nil && elemType.Kind == types.Array {
		elemType = elemType.Elem
	} else {
		elemType = types.AnyType
	}
	setOp := ir.SetIndexOpcode(elemType)
	c.Fn.Emit(ir.NewInstr(ir.Opcode(setOp), nil, arrReg, idxReg, rhsReg))
	return nil
}

func (c *Context) buildFieldAssign(s *ast.FieldAssignStmt) error {
	objReg, err := c.Build(s.Object)
	if err != nil {
		return err
	}
	rhsReg, err := c.Build(s.RHS)
	if err != nil {
		return err
	}
	objType := objReg.Type
	if objType == nil || objType.Kind != types.Struct {
		return errf("%s: cannot assign field %q of non-struct value", pos(s), s.Field)
	}
	layout, ok := c.Tables.Struct(objType.Name)
	if !ok {
		return errf("%s: unknown struct %q", pos(s), objType.Name)
	}
	slot := layout.SlotOf(s.Field)
	if slot < 0 {
		return errf("%s: %q has no field %q", pos(s), objType.Name, s.Field)
	}
	setOp := ir.SetIndexOpcode(layout.FieldType(s.Field))
	c.Fn.Emit(ir.NewInstr(ir.Opcode(setOp), nil, objReg, ir.IntConst(int64(slot), types.Int), rhsReg))
	return nil
}
