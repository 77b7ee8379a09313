package build

import (
	"strconv"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

// Build lowers expr into IR, returning the register holding its value.
func (c *Context) Build(expr ast.Expr) (*ir.Register, error) {
	dest := c.Fn.NewReg()
	if err := c.BuildInto(expr, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// BuildInto lowers expr directly into dest, avoiding a redundant move
// when the destination register is already known (§4.2).
func (c *Context) BuildInto(expr ast.Expr, dest *ir.Register) error {
	switch x := expr.(type) {
	case *ast.NumberLit:
		k, err := classifyNumber(x.Text, c.defaultSuffix)
		if err != nil {
			return errf("%s: %v", pos(x), err)
		}
		dest.Type = ConstType(k)
		c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, k))
		return nil

	case *ast.StringLit:
		dest.Type = types.StringType
		c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, ir.StringConst(x.Value)))
		return nil

	case *ast.BoolLit:
		dest.Type = types.BoolType
		c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, ir.BoolConst(x.Value)))
		return nil

	case *ast.Identifier:
		return c.buildIdentifier(x, dest)

	case *ast.Member:
		return c.buildMember(x, dest)

	case *ast.ArrayLit:
		return c.buildArrayLit(x, dest)

	case *ast.Index:
		return c.buildIndex(x, dest)

	case *ast.Binary:
		return c.buildBinary(x, dest)

	case *ast.Unary:
		return c.buildUnary(x, dest)

	case *ast.Call:
		return c.buildCall(x, dest)

	case *ast.New:
		return c.buildNew(x, dest)
	}
	return errf("%s: unsupported expression", pos(expr))
}

func (c *Context) buildIdentifier(x *ast.Identifier, dest *ir.Register) error {
	if reg, ok := c.Scope.Lookup(x.Name); ok {
		dest.Type = reg.Type
		c.Fn.Emit(ir.NewMove(dest, reg))
		return nil
	}
	if c.thisType != nil {
		return c.buildFieldLoad(c.thisType, thisRegister(c), x.Name, dest, x)
	}
	return errf("%s: undefined identifier %q", pos(x), x.Name)
}

func thisRegister(c *Context) *ir.Register {
	r, _ := c.Scope.Lookup("this")
	return r
}

func (c *Context) buildMember(x *ast.Member, dest *ir.Register) error {
	if mod, ok := x.Object.(*ast.Identifier); ok {
		if _, isLocal := c.Scope.Lookup(mod.Name); !isLocal {
			if v, ok := c.Tables.Constant(mod.Name + "." + x.Name); ok {
				dest.Type = ConstType(v)
				c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, v))
				return nil
			}
		}
	}
	objReg, err := c.Build(x.Object)
	if err != nil {
		return err
	}
	objType := objReg.Type
	if objType == nil {
		objType = StaticType(c, x.Object)
	}
	return c.buildFieldLoad(objType, objReg, x.Name, dest, x)
}

func (c *Context) buildFieldLoad(objType *types.Type, objReg *ir.Register, field string, dest *ir.Register, at ast.Located) error {
	if objType == nil || objType.Kind != types.Struct {
		return errf("%s: cannot access field %q of non-struct value", pos(at), field)
	}
	layout, ok := c.Tables.Struct(objType.Name)
	if !ok {
		return errf("%s: unknown struct %q", pos(at), objType.Name)
	}
	slot := layout.SlotOf(field)
	if slot < 0 {
		return errf("%s: %q has no field %q", pos(at), objType.Name, field)
	}
	dest.Type = layout.FieldType(field)
	c.Fn.Emit(ir.NewInstr(ir.Opcode(ir.IndexBuiltinPrefix+"r"), dest, objReg, ir.IntConst(int64(slot), types.Int)))
	return nil
}

func (c *Context) buildArrayLit(x *ast.ArrayLit, dest *ir.Register) error {
	if len(x.Elements) == 0 {
		return errf("%s: empty array literal", pos(x))
	}
	if v, ok := TryFold(c, x); ok {
		dest.Type = ConstType(v)
		c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, v))
		return nil
	}
	elemType := StaticType(c, x.Elements[0])
	dest.Type = types.NewArray(elemType)
	c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, placeholderList(len(x.Elements))))
	for i, el := range x.Elements {
		elReg, err := c.Build(el)
		if err != nil {
			return err
		}
		setOp := ir.SetIndexOpcode(elemType)
		c.Fn.Emit(ir.NewInstr(ir.Opcode(setOp), nil, dest, ir.IntConst(int64(i), types.Int), elReg))
	}
	return nil
}

func (c *Context) buildIndex(x *ast.Index, dest *ir.Register) error {
	if v, ok := TryFold(c, x); ok {
		dest.Type = ConstType(v)
		c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, v))
		return nil
	}
	if arrFold, ok := TryFold(c, x.Array); ok && arrFold.Kind == ir.ConstList {
		if idxFold, ok := TryFold(c, x.Idx); ok && idxFold.Kind == ir.ConstInt {
			if idxFold.Int < 0 || int(idxFold.Int) >= len(arrFold.List) {
				return errf("%s: array index %d out of bounds for constant array of length %d",
					pos(x), idxFold.Int, len(arrFold.List))
			}
		}
	}

	var arrReg *ir.Register
	var err error
	if _, nested := x.Array.(*ast.Index); nested {
		arrReg = c.Fn.NewReg()
		if err := c.buildIndexAsRef(x.Array.(*ast.Index), arrReg); err != nil {
			return err
		}
	} else {
		arrReg, err = c.Build(x.Array)
		if err != nil {
			return err
		}
	}

	idxReg, err := c.Build(x.Idx)
	if err != nil {
		return err
	}

	elemType := StaticType(c, x)
	dest.Type = elemType
	op := ir.IndexOpcode(elemType)
	c.Fn.Emit(ir.NewInstr(ir.Opcode(op), dest, arrReg, idxReg))
	return nil
}

// buildIndexAsRef builds a nested index expression as a reference (always
// via the "r" channel) so the result stays indexable for the next level
// of subscript, per §4.2's "build the middle levels as references" rule.
func (c *Context) buildIndexAsRef(x *ast.Index, dest *ir.Register) error {
	arrReg, err := c.Build(x.Array)
	if err != nil {
		return err
	}
	idxReg, err := c.Build(x.Idx)
	if err != nil {
		return err
	}
	dest.Type = StaticType(c, x)
	c.Fn.Emit(ir.NewInstr(ir.Opcode(ir.IndexBuiltinPrefix+"r"), dest, arrReg, idxReg))
	return nil
}

func (c *Context) buildUnary(x *ast.Unary, dest *ir.Register) error {
	switch x.Op {
	case ast.Neg:
		opReg, err := c.Build(x.Operand)
		if err != nil {
			return err
		}
		width := opReg.Type
		if width == nil {
			width = types.IntType
		}
		oc, ok := ir.NegOpcode(width.Kind)
		if !ok {
			return errf("%s: unary - not supported for type %s", pos(x), width)
		}
		dest.Type = width
		c.Fn.Emit(ir.NewInstr(oc, dest, opReg))
		return nil
	case ast.Not:
		// '!' lowers to "== 0".
		opReg, err := c.Build(x.Operand)
		if err != nil {
			return err
		}
		dest.Type = types.BoolType
		oc, _ := ir.CompareOpcode("==", types.Int, false)
		c.Fn.Emit(ir.NewInstr(oc, dest, opReg, ir.Zero(types.Int)))
		return nil
	}
	return errf("%s: unsupported unary operator", pos(x))
}

func (c *Context) buildNew(x *ast.New, dest *ir.Register) error {
	dest.Type = types.NewStruct(x.TypeName, nil)
	argRegs := make([]*ir.Register, len(x.Args))
	for i, a := range x.Args {
		r, err := c.Build(a)
		if err != nil {
			return err
		}
		argRegs[i] = r
	}
	layout, isStruct := c.Tables.Struct(x.TypeName)
	if !isStruct {
		c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, placeholderList(len(argRegs))))
		for i, r := range argRegs {
			c.Fn.Emit(ir.NewInstr(ir.Opcode(ir.SetIndexBuiltinPrefix+"r"), nil, dest, ir.IntConst(int64(i), types.Int), r))
		}
		return nil
	}
	c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, placeholderList(len(layout.Fields))))
	target := x.TypeName + ".__init__" + strconv.Itoa(len(argRegs)+1)
	call := ir.NewCall(nil, target, append([]ir.Value{dest}, regsToValues(argRegs)...)...)
	c.Fn.Emit(call)
	return nil
}

// placeholderList builds a ConstList of n null placeholders so the VM's
// decoder pre-sizes the resulting *vm.Array (struct instances too) to n slots before any
// __setindex_* write touches it — an empty ConstList decodes to a
// zero-length array, which traps on the very first write.
func placeholderList(n int) *ir.Constant {
	items := make([]*ir.Constant, n)
	for i := range items {
		items[i] = ir.NullConst()
	}
	return ir.ListConst(items)
}

func regsToValues(regs []*ir.Register) []ir.Value {
	out := make([]ir.Value, len(regs))
	for i, r := range regs {
		out[i] = r
	}
	return out
}
