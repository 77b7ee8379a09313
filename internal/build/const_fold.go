package build

import (
	"strconv"
	"strings"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

// classifyNumber parses a number literal's lexeme into a constant,
// honoring the optional type suffix ("l" long, "f" float — byte/short/
// double suffixes no longer exist) or, absent a suffix, the presence of
// '.'/'e'/'E' (-> double) else int. An empty defaultSuffix leaves the
// literal's own form as the sole classifier.
func classifyNumber(text, defaultSuffix string) (*ir.Constant, error) {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, "l"):
		v, err := strconv.ParseInt(strings.TrimSuffix(lower, "l"), 10, 64)
		if err != nil {
			return nil, errf("invalid long literal %q", text)
		}
		return ir.IntConst(v, types.Long), nil
	case strings.HasSuffix(lower, "f"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(lower, "f"), 32)
		if err != nil {
			return nil, errf("invalid float literal %q", text)
		}
		return ir.FloatConst(v, types.Float), nil
	case strings.ContainsAny(text, ".eE"):
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errf("invalid double literal %q", text)
		}
		return ir.FloatConst(v, types.Double), nil
	default:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, errf("invalid integer literal %q", text)
		}
		switch defaultSuffix {
		case "l":
			return ir.IntConst(v, types.Long), nil
		case "f":
			return ir.FloatConst(float64(v), types.Float), nil
		default:
			return ir.IntConst(v, types.Int), nil
		}
	}
}

// TryFold attempts compile-time evaluation of e, returning ok=false when e
// isn't foldable. It never itself range-checks the result against a
// narrower declared width — byte/short narrowing of a folded constant is
// internal/sema's job (internal/types.FitsConstInt), not this function's.
func TryFold(c *Context, e ast.Expr) (*ir.Constant, bool) {
	switch x := e.(type) {
	case *ast.NumberLit:
		k, err := classifyNumber(x.Text, c.defaultSuffix)
		if err != nil {
			return nil, false
		}
		return k, true
	case *ast.StringLit:
		return ir.StringConst(x.Value), true
	case *ast.BoolLit:
		return ir.BoolConst(x.Value), true
	case *ast.Identifier:
		if v, ok := c.Scope.GetConstValue(x.Name); ok {
			return v, true
		}
		return nil, false
	case *ast.Member:
		if mod, ok := x.Object.(*ast.Identifier); ok {
			if v, ok := c.Tables.Constant(mod.Name + "." + x.Name); ok {
				return v, true
			}
		}
		return nil, false
	case *ast.ArrayLit:
		items := make([]*ir.Constant, 0, len(x.Elements))
		for _, el := range x.Elements {
			v, ok := TryFold(c, el)
			if !ok {
				return nil, false
			}
			items = append(items, v)
		}
		return ir.ListConst(items), true
	case *ast.Unary:
		v, ok := TryFold(c, x.Operand)
		if !ok {
			return nil, false
		}
		return foldUnary(x.Op, v)
	case *ast.Binary:
		l, ok := TryFold(c, x.Left)
		if !ok {
			return nil, false
		}
		r, ok := TryFold(c, x.Right)
		if !ok {
			return nil, false
		}
		return foldBinary(x.Op, l, r)
	case *ast.Index:
		arr, ok := TryFold(c, x.Array)
		if !ok || arr.Kind != ir.ConstList {
			return nil, false
		}
		idx, ok := TryFold(c, x.Idx)
		if !ok || idx.Kind != ir.ConstInt {
			return nil, false
		}
		if idx.Int < 0 || int(idx.Int) >= len(arr.List) {
			return nil, false
		}
		return arr.List[idx.Int], true
	}
	return nil, false
}

func foldUnary(op ast.UnOp, v *ir.Constant) (*ir.Constant, bool) {
	switch op {
	case ast.Neg:
		switch v.Kind {
		case ir.ConstInt:
			return ir.IntConst(-v.Int, v.Width), true
		case ir.ConstFloat:
			return ir.FloatConst(-v.Float, v.Width), true
		}
	case ast.Not:
		if v.Kind == ir.ConstBool {
			return ir.BoolConst(!v.Bool), true
		}
	}
	return nil, false
}

func foldBinary(op ast.BinOp, l, r *ir.Constant) (*ir.Constant, bool) {
	if op == ast.Add && (l.Kind == ir.ConstString || r.Kind == ir.ConstString) {
		return ir.StringConst(constText(l) + constText(r)), true
	}
	if l.Kind == ir.ConstBool && r.Kind == ir.ConstBool {
		switch op {
		case ast.LAnd:
			return ir.BoolConst(l.Bool && r.Bool), true
		case ast.LOr:
			return ir.BoolConst(l.Bool || r.Bool), true
		case ast.Eq:
			return ir.BoolConst(l.Bool == r.Bool), true
		case ast.Ne:
			return ir.BoolConst(l.Bool != r.Bool), true
		}
		return nil, false
	}
	isFloat := l.Kind == ir.ConstFloat || r.Kind == ir.ConstFloat
	if isFloat {
		lf, rf := constFloat(l), constFloat(r)
		width := l.Width
		if r.Width > width {
			width = r.Width
		}
		switch op {
		case ast.Add:
			return ir.FloatConst(lf+rf, width), true
		case ast.Sub:
			return ir.FloatConst(lf-rf, width), true
		case ast.Mul:
			return ir.FloatConst(lf*rf, width), true
		case ast.Div:
			if rf == 0 {
				return nil, false
			}
			return ir.FloatConst(lf/rf, width), true
		case ast.Eq:
			return ir.BoolConst(lf == rf), true
		case ast.Ne:
			return ir.BoolConst(lf != rf), true
		case ast.Lt:
			return ir.BoolConst(lf < rf), true
		case ast.Le:
			return ir.BoolConst(lf <= rf), true
		case ast.Gt:
			return ir.BoolConst(lf > rf), true
		case ast.Ge:
			return ir.BoolConst(lf >= rf), true
		}
		return nil, false
	}
	if l.Kind == ir.ConstInt && r.Kind == ir.ConstInt {
		li, ri := l.Int, r.Int
		width := l.Width
		if r.Width > width {
			width = r.Width
		}
		switch op {
		case ast.Add:
			return ir.IntConst(li+ri, width), true
		case ast.Sub:
			return ir.IntConst(li-ri, width), true
		case ast.Mul:
			return ir.IntConst(li*ri, width), true
		case ast.Div:
			if ri == 0 {
				return nil, false
			}
			return ir.IntConst(li/ri, width), true
		case ast.Mod:
			if ri == 0 {
				return nil, false
			}
			return ir.IntConst(li%ri, width), true
		case ast.BitAnd:
			return ir.IntConst(li&ri, width), true
		case ast.BitOr:
			return ir.IntConst(li|ri, width), true
		case ast.BitXor:
			return ir.IntConst(li^ri, width), true
		case ast.Shl:
			return ir.IntConst(li<<uint(ri), width), true
		case ast.Shr:
			return ir.IntConst(li>>uint(ri), width), true
		case ast.Eq:
			return ir.BoolConst(li == ri), true
		case ast.Ne:
			return ir.BoolConst(li != ri), true
		case ast.Lt:
			return ir.BoolConst(li < ri), true
		case ast.Le:
			return ir.BoolConst(li <= ri), true
		case ast.Gt:
			return ir.BoolConst(li > ri), true
		case ast.Ge:
			return ir.BoolConst(li >= ri), true
		}
	}
	return nil, false
}

func constText(c *ir.Constant) string {
	switch c.Kind {
	case ir.ConstString:
		return c.Str
	default:
		return c.String()
	}
}

func constFloat(c *ir.Constant) float64 {
	if c.Kind == ir.ConstFloat {
		return c.Float
	}
	return float64(c.Int)
}

// ConstType reports the static Snow type of a folded constant.
func ConstType(c *ir.Constant) *types.Type { return c.Type() }
