package build

import (
	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

func (c *Context) buildBinary(x *ast.Binary, dest *ir.Register) error {
	if v, ok := TryFold(c, x); ok {
		dest.Type = ConstType(v)
		c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, v))
		return nil
	}

	switch x.Op {
	case ast.LAnd:
		return c.buildShortCircuit(x, dest, false)
	case ast.LOr:
		return c.buildShortCircuit(x, dest, true)
	}

	isString := x.Op == ast.Add && (looksLikeString(c, x.Left) || looksLikeString(c, x.Right) ||
		StaticType(c, x.Left).Kind == types.String || StaticType(c, x.Right).Kind == types.String)

	lReg, err := c.Build(x.Left)
	if err != nil {
		return err
	}
	rReg, err := c.Build(x.Right)
	if err != nil {
		return err
	}

	if isString {
		dest.Type = types.StringType
		c.Fn.Emit(ir.NewInstr(ir.AddR, dest, lReg, rReg))
		return nil
	}

	width := widestOf(lReg.Type, rReg.Type)
	if width == nil {
		width = types.IntType
	}

	switch x.Op {
	case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		ref := width.Kind == types.String || width.Kind == types.Struct || width.Kind == types.Array
		oc, ok := ir.CompareOpcode(opSymbol(x.Op), width.Kind, ref)
		if !ok {
			return errf("%s: comparison operator %s not supported for type %s", pos(x), opSymbol(x.Op), width)
		}
		dest.Type = types.BoolType
		c.Fn.Emit(ir.NewInstr(oc, dest, lReg, rReg))
		return nil
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		oc, ok := ir.ArithOpcode(opSymbol(x.Op), width.Kind)
		if !ok {
			return errf("%s: operator %s not supported for type %s", pos(x), opSymbol(x.Op), width)
		}
		dest.Type = width
		c.Fn.Emit(ir.NewInstr(oc, dest, lReg, rReg))
		return nil
	case ast.BitAnd, ast.BitOr, ast.BitXor, ast.Shl, ast.Shr:
		oc, ok := ir.BitwiseOpcode(opSymbol(x.Op), width.Kind)
		if !ok {
			return errf("%s: operator %s not supported for type %s", pos(x), opSymbol(x.Op), width)
		}
		dest.Type = width
		c.Fn.Emit(ir.NewInstr(oc, dest, lReg, rReg))
		return nil
	}
	return errf("%s: unsupported binary operator", pos(x))
}

// buildShortCircuit lowers && (isOr=false: a zero left operand decides
// false) and || (isOr=true: a non-zero left operand decides true) without evaluating the right operand when the left already
// decides the result, using labeled compare-and-jump opcodes producing a
// 0/1 result in dest (§4.2, §8 "short-circuit semantics").
func (c *Context) buildShortCircuit(x *ast.Binary, dest *ir.Register, isOr bool) error {
	lReg, err := c.Build(x.Left)
	if err != nil {
		return err
	}
	dest.Type = types.BoolType

	lshort := c.Fn.NewLabel() // jump here if short-circuit decided
	lend := c.Fn.NewLabel()

	if isOr {
		// if left != 0, short circuit to "true"
		c.Fn.Emit(ir.NewCompareJump(ir.CmpINeJump, lReg, ir.Zero(types.Int), lshort))
	} else {
		// if left == 0, short circuit to "false"
		c.Fn.Emit(ir.NewCompareJump(ir.CmpIEqJump, lReg, ir.Zero(types.Int), lshort))
	}

	rReg, err := c.Build(x.Right)
	if err != nil {
		return err
	}
	c.Fn.Emit(ir.NewMove(dest, rReg))
	c.Fn.Emit(ir.NewJump(lend))

	c.Fn.Emit(ir.NewLabelInstr(lshort))
	c.Fn.Emit(ir.NewInstr(ir.LoadConst, dest, ir.BoolConst(isOr)))

	c.Fn.Emit(ir.NewLabelInstr(lend))
	return nil
}

func opSymbol(op ast.BinOp) string {
	switch op {
	case ast.Add:
		return "+"
	case ast.Sub:
		return "-"
	case ast.Mul:
		return "*"
	case ast.Div:
		return "/"
	case ast.Mod:
		return "%"
	case ast.BitAnd:
		return "&"
	case ast.BitOr:
		return "|"
	case ast.BitXor:
		return "^"
	case ast.Shl:
		return "<<"
	case ast.Shr:
		return ">>"
	case ast.Eq:
		return "=="
	case ast.Ne:
		return "!="
	case ast.Lt:
		return "<"
	case ast.Le:
		return "<="
	case ast.Gt:
		return ">"
	case ast.Ge:
		return ">="
	}
	return "?"
}
