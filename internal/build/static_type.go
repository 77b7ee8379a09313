package build

import (
	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/types"
)

// StaticType is the builder's best-effort static type of an expression,
// used to pick the right-width opcode (arithmetic, compare, index channel,
// string-concat detection). Semantic analysis has already validated the
// program by the time the builder runs, so this never reports errors —
// it defaults to types.AnyType when it cannot determine a precise type.
func StaticType(c *Context, e ast.Expr) *types.Type {
	switch x := e.(type) {
	case *ast.NumberLit:
		k, err := classifyNumber(x.Text, c.defaultSuffix)
		if err != nil {
			return types.IntType
		}
		return ConstType(k)
	case *ast.StringLit:
		return types.StringType
	case *ast.BoolLit:
		return types.BoolType
	case *ast.Identifier:
		if t, ok := c.Scope.LookupType(x.Name); ok {
			return t
		}
		if c.thisType != nil {
			if layout, ok := c.Tables.Struct(c.thisType.Name); ok {
				if ft := layout.FieldType(x.Name); ft != nil {
					return ft
				}
			}
		}
		return types.AnyType
	case *ast.Member:
		if mod, ok := x.Object.(*ast.Identifier); ok {
			if _, isLocal := c.Scope.LookupType(mod.Name); !isLocal {
				if layout, ok := c.Tables.Struct(mod.Name); ok {
					if ft := layout.FieldType(x.Name); ft != nil {
						return ft
					}
				}
			}
		}
		objT := StaticType(c, x.Object)
		if objT != nil && objT.Kind == types.Struct {
			if layout, ok := c.Tables.Struct(objT.Name); ok {
				if ft := layout.FieldType(x.Name); ft != nil {
					return ft
				}
			}
		}
		return types.AnyType
	case *ast.Index:
		at := StaticType(c, x.Array)
		if at != nil && at.Kind == types.Array {
			return at.Elem
		}
		return types.AnyType
	case *ast.ArrayLit:
		if len(x.Elements) == 0 {
			return types.NewArray(types.AnyType)
		}
		return types.NewArray(StaticType(c, x.Elements[0]))
	case *ast.New:
		return types.NewStruct(x.TypeName, nil)
	case *ast.Unary:
		if x.Op == ast.Not {
			return types.BoolType
		}
		return StaticType(c, x.Operand)
	case *ast.Binary:
		switch x.Op {
		case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge, ast.LAnd, ast.LOr:
			return types.BoolType
		case ast.Add:
			lt, rt := StaticType(c, x.Left), StaticType(c, x.Right)
			if looksLikeString(c, x.Left) || looksLikeString(c, x.Right) ||
				(lt != nil && lt.Kind == types.String) || (rt != nil && rt.Kind == types.String) {
				return types.StringType
			}
			return widestOf(lt, rt)
		default:
			return widestOf(StaticType(c, x.Left), StaticType(c, x.Right))
		}
	case *ast.Call:
		if name := calleeQualified(c, x.Callee); name != "" {
			if sig, ok := c.Tables.Function(name); ok {
				return sig.ReturnType
			}
		}
		return types.AnyType
	}
	return types.AnyType
}

// looksLikeString reports whether e is, syntactically, a string literal or
// a binary subtree containing one — the spec's third detection mode for
// '+' string-concatenation ("a binary subtree containing a literal").
func looksLikeString(c *Context, e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.StringLit:
		return true
	case *ast.Binary:
		return looksLikeString(c, x.Left) || looksLikeString(c, x.Right)
	}
	return false
}

func widestOf(a, b *types.Type) *types.Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if types.Widens(a, b) {
		return b
	}
	return a
}

func calleeQualified(c *Context, callee ast.Expr) string {
	switch x := callee.(type) {
	case *ast.Identifier:
		return c.Module + "." + x.Name
	case *ast.Member:
		if mod, ok := x.Object.(*ast.Identifier); ok {
			return mod.Name + "." + x.Name
		}
	}
	return ""
}
