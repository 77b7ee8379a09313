// Package ir is the linear, register-typed intermediate representation the
// builder lowers the AST into, and the backend lowers out of.
package ir

import (
	"fmt"

	"github.com/snowlang/snow/internal/types"
)

// Value is any operand an instruction can reference: a register, a
// constant, or a label.
type Value interface {
	isValue()
	String() string
}

// Register is a virtual register: an integer identity unique within one
// function, optionally tagged with its declared type. Registers are
// single-assignment by convention; the IR itself permits reassignment via
// an explicit move (modeled as add-with-zero).
type Register struct {
	ID   int
	Type *types.Type // nil until inferred/assigned by the builder
}

func (*Register) isValue()        {}
func (r *Register) String() string { return fmt.Sprintf("r%d", r.ID) }

// ConstKind discriminates the constant tagged union.
type ConstKind int

const (
	ConstInt ConstKind = iota // Width carries Byte/Short/Int/Long
	ConstFloat                // Width carries Float/Double
	ConstBool
	ConstString
	ConstList // nested constant list (array literal)
	ConstNull
)

// Constant is a tagged-union compile-time value.
type Constant struct {
	Kind   ConstKind
	Width  types.Kind // for ConstInt/ConstFloat
	Int    int64
	Float  float64
	Bool   bool
	Str    string
	List   []*Constant
}

func (*Constant) isValue() {}

func (c *Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case ConstBool:
		if c.Bool {
			return "1"
		}
		return "0"
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstList:
		return fmt.Sprintf("list(%d)", len(c.List))
	case ConstNull:
		return "null"
	default:
		return "<const?>"
	}
}

// Type reports the inferred Snow type of the constant, used by the builder
// to tag destination registers after a LOAD_CONST.
func (c *Constant) Type() *types.Type {
	switch c.Kind {
	case ConstInt:
		return &types.Type{Kind: c.Width}
	case ConstFloat:
		return &types.Type{Kind: c.Width}
	case ConstBool:
		return types.BoolType
	case ConstString:
		return types.StringType
	case ConstList:
		var elem *types.Type
		if len(c.List) > 0 {
			elem = c.List[0].Type()
		} else {
			elem = types.AnyType
		}
		return types.NewArray(elem)
	default:
		return types.AnyType
	}
}

func IntConst(v int64, width types.Kind) *Constant   { return &Constant{Kind: ConstInt, Int: v, Width: width} }
func FloatConst(v float64, width types.Kind) *Constant {
	return &Constant{Kind: ConstFloat, Float: v, Width: width}
}
func BoolConst(v bool) *Constant   { return &Constant{Kind: ConstBool, Bool: v} }
func StringConst(v string) *Constant { return &Constant{Kind: ConstString, Str: v} }
func NullConst() *Constant         { return &Constant{Kind: ConstNull} }
func ListConst(items []*Constant) *Constant { return &Constant{Kind: ConstList, List: items} }

// Zero returns the zero constant of the given numeric width, used by
// MOVE's add-with-zero lowering.
func Zero(width types.Kind) *Constant {
	if width == types.Float || width == types.Double {
		return FloatConst(0, width)
	}
	return IntConst(0, width)
}

// Label is a function-local symbolic address, unique per function
// (generated as L0, L1, ...).
type Label string

func (Label) isValue()          {}
func (l Label) String() string { return string(l) }
