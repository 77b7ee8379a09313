// Package types implements the Snow language-level type model: the closed
// set of primitives, the numeric widening chain, and the composite array,
// struct and function type shapes described by the data model.
package types

import "fmt"

// Kind discriminates the type variants.
type Kind int

const (
	Invalid Kind = iota
	Byte         // 8-bit signed
	Short        // 16-bit signed
	Int          // 32-bit signed
	Long         // 64-bit signed
	Float        // 32-bit
	Double       // 64-bit
	Bool
	String
	Void
	Any
	Array
	Struct
	Func
)

// Type is a Snow type. Composite fields are only meaningful for the Kind
// that declares them; the rest stay zero.
type Type struct {
	Kind Kind

	Elem *Type // Array element type

	Name   string  // Struct name
	Parent *string // Struct parent name, nil if none

	Params []*Type // Func parameter types
	Return *Type   // Func return type
}

var (
	ByteType   = &Type{Kind: Byte}
	ShortType  = &Type{Kind: Short}
	IntType    = &Type{Kind: Int}
	LongType   = &Type{Kind: Long}
	FloatType  = &Type{Kind: Float}
	DoubleType = &Type{Kind: Double}
	BoolType   = &Type{Kind: Bool}
	StringType = &Type{Kind: String}
	VoidType   = &Type{Kind: Void}
	AnyType    = &Type{Kind: Any}
)

// widenRank orders the numeric widening chain: byte -> short -> int -> long
// -> float -> double. Non-numeric kinds are absent from the table.
var widenRank = map[Kind]int{
	Byte: 0, Short: 1, Int: 2, Long: 3, Float: 4, Double: 5,
}

// IsNumeric reports whether k participates in the widening chain.
func (k Kind) IsNumeric() bool {
	_, ok := widenRank[k]
	return ok
}

// IsIntegral reports whether k is one of the fixed-width integer kinds.
func (k Kind) IsIntegral() bool {
	switch k {
	case Byte, Short, Int, Long:
		return true
	}
	return false
}

func NewArray(elem *Type) *Type { return &Type{Kind: Array, Elem: elem} }

func NewStruct(name string, parent *string) *Type { return &Type{Kind: Struct, Name: name, Parent: parent} }

func NewFunc(params []*Type, ret *Type) *Type { return &Type{Kind: Func, Params: params, Return: ret} }

// Identical reports structural identity (not widening-compatible, exactly
// the same shape).
func Identical(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Array:
		return Identical(a.Elem, b.Elem)
	case Struct:
		return a.Name == b.Name
	case Func:
		if len(a.Params) != len(b.Params) || !Identical(a.Return, b.Return) {
			return false
		}
		for i := range a.Params {
			if !Identical(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Widens reports whether a value of type from can be implicitly widened to
// type to along the numeric chain (from is strictly narrower, or equal).
func Widens(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	rf, okf := widenRank[from.Kind]
	rt, okt := widenRank[to.Kind]
	if !okf || !okt {
		return false
	}
	return rf <= rt
}

// Compatible reports assignment/parameter compatibility per the data model:
// identity, any<->any, or numeric widening.
func Compatible(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if to.Kind == Any || from.Kind == Any {
		return true
	}
	if Identical(from, to) {
		return true
	}
	if from.Kind.IsNumeric() && to.Kind.IsNumeric() {
		return Widens(from, to)
	}
	return false
}

// FitsConstInt reports whether a compile-time-constant integer value v fits
// in the representable range of the fixed-width integer kind k. Used for
// byte/short narrowing of constant expressions.
func FitsConstInt(k Kind, v int64) bool {
	switch k {
	case Byte:
		return v >= -128 && v <= 127
	case Short:
		return v >= -32768 && v <= 32767
	case Int:
		return v >= -2147483648 && v <= 2147483647
	case Long:
		return true
	default:
		return false
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Void:
		return "void"
	case Any:
		return "any"
	case Array:
		return fmt.Sprintf("%s[]", t.Elem)
	case Struct:
		return t.Name
	case Func:
		return fmt.Sprintf("func(%v)%s", t.Params, t.Return)
	default:
		return "<invalid>"
	}
}

// FromName resolves a primitive type by its source-level name. Struct and
// array names are resolved by the caller against the struct-layout table.
func FromName(name string) (*Type, bool) {
	switch name {
	case "byte":
		return ByteType, true
	case "short":
		return ShortType, true
	case "int":
		return IntType, true
	case "long":
		return LongType, true
	case "float":
		return FloatType, true
	case "double":
		return DoubleType, true
	case "bool":
		return BoolType, true
	case "string":
		return StringType, true
	case "void":
		return VoidType, true
	case "any":
		return AnyType, true
	default:
		return nil, false
	}
}
