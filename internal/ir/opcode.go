package ir

import "github.com/snowlang/snow/internal/types"

// Opcode is the canonical operation vocabulary shared by the IR and, after
// register allocation, by the VM's textual instruction stream (the backend
// is close to identity on opcode names — it only rewrites registers to
// slots and widens labels/targets to fully-resolved text).
type Opcode string

const (
	// Typed arithmetic. Byte/short operands are promoted to the I32 channel:
	// the emitter's width table (spec.md §4.7) only distinguishes I32, I64,
	// F32, F64 and R, so narrower integer widths share the I32 opcodes and
	// are only re-narrowed at the store/array-channel boundary (§4.2, §4.3).
	AddI32 Opcode = "ADD_I32"
	SubI32 Opcode = "SUB_I32"
	MulI32 Opcode = "MUL_I32"
	DivI32 Opcode = "DIV_I32"
	ModI32 Opcode = "MOD_I32"

	AddI64 Opcode = "ADD_I64"
	SubI64 Opcode = "SUB_I64"
	MulI64 Opcode = "MUL_I64"
	DivI64 Opcode = "DIV_I64"
	ModI64 Opcode = "MOD_I64"

	AddF32 Opcode = "ADD_F32"
	SubF32 Opcode = "SUB_F32"
	MulF32 Opcode = "MUL_F32"
	DivF32 Opcode = "DIV_F32"

	AddF64 Opcode = "ADD_F64"
	SubF64 Opcode = "SUB_F64"
	MulF64 Opcode = "MUL_F64"
	DivF64 Opcode = "DIV_F64"

	// Reference add: string concatenation and list-container append/build.
	AddR Opcode = "ADD_R"

	// Bitwise (integer only).
	AndI32 Opcode = "AND_I32"
	OrI32  Opcode = "OR_I32"
	XorI32 Opcode = "XOR_I32"
	ShlI32 Opcode = "SHL_I32"
	ShrI32 Opcode = "SHR_I32"
	AndI64 Opcode = "AND_I64"
	OrI64  Opcode = "OR_I64"
	XorI64 Opcode = "XOR_I64"
	ShlI64 Opcode = "SHL_I64"
	ShrI64 Opcode = "SHR_I64"
	NegI32 Opcode = "NEG_I32"
	NegI64 Opcode = "NEG_I64"
	NegF32 Opcode = "NEG_F32"
	NegF64 Opcode = "NEG_F64"

	// Value-producing typed compares (dest register gets 0/1).
	CmpEqI32, CmpNeI32, CmpLtI32, CmpLeI32, CmpGtI32, CmpGeI32 Opcode = "CMP_EQ_I32", "CMP_NE_I32", "CMP_LT_I32", "CMP_LE_I32", "CMP_GT_I32", "CMP_GE_I32"
	CmpEqI64, CmpNeI64, CmpLtI64, CmpLeI64, CmpGtI64, CmpGeI64 Opcode = "CMP_EQ_I64", "CMP_NE_I64", "CMP_LT_I64", "CMP_LE_I64", "CMP_GT_I64", "CMP_GE_I64"
	CmpEqF32, CmpNeF32, CmpLtF32, CmpLeF32, CmpGtF32, CmpGeF32 Opcode = "CMP_EQ_F32", "CMP_NE_F32", "CMP_LT_F32", "CMP_LE_F32", "CMP_GT_F32", "CMP_GE_F32"
	CmpEqF64, CmpNeF64, CmpLtF64, CmpLeF64, CmpGtF64, CmpGeF64 Opcode = "CMP_EQ_F64", "CMP_NE_F64", "CMP_LT_F64", "CMP_LE_F64", "CMP_GT_F64", "CMP_GE_F64"
	CmpEqR, CmpNeR                                             Opcode = "CMP_EQ_R", "CMP_NE_R" // reference-equality variant

	// Control-flow compare-and-jump: same width suffixes, "_JUMP" appended.
	CmpEqI32Jump, CmpNeI32Jump, CmpLtI32Jump, CmpLeI32Jump, CmpGtI32Jump, CmpGeI32Jump Opcode = "CMP_EQ_I32_JUMP", "CMP_NE_I32_JUMP", "CMP_LT_I32_JUMP", "CMP_LE_I32_JUMP", "CMP_GT_I32_JUMP", "CMP_GE_I32_JUMP"
	CmpEqI64Jump, CmpNeI64Jump, CmpLtI64Jump, CmpLeI64Jump, CmpGtI64Jump, CmpGeI64Jump Opcode = "CMP_EQ_I64_JUMP", "CMP_NE_I64_JUMP", "CMP_LT_I64_JUMP", "CMP_LE_I64_JUMP", "CMP_GT_I64_JUMP", "CMP_GE_I64_JUMP"
	CmpEqF32Jump, CmpNeF32Jump, CmpLtF32Jump, CmpLeF32Jump, CmpGtF32Jump, CmpGeF32Jump Opcode = "CMP_EQ_F32_JUMP", "CMP_NE_F32_JUMP", "CMP_LT_F32_JUMP", "CMP_LE_F32_JUMP", "CMP_GT_F32_JUMP", "CMP_GE_F32_JUMP"
	CmpEqF64Jump, CmpNeF64Jump, CmpLtF64Jump, CmpLeF64Jump, CmpGtF64Jump, CmpGeF64Jump Opcode = "CMP_EQ_F64_JUMP", "CMP_NE_F64_JUMP", "CMP_LT_F64_JUMP", "CMP_LE_F64_JUMP", "CMP_GT_F64_JUMP", "CMP_GE_F64_JUMP"
	CmpIEqJump, CmpINeJump                                                             Opcode = "CMP_IEQ_JUMP", "CMP_INE_JUMP" // against a bare int register, used by short-circuit && / ||

	// Data movement / control flow / calls.
	LoadConst Opcode = "LOAD_CONST"
	Label_    Opcode = "LABEL"
	Jump      Opcode = "JUMP"
	Call      Opcode = "CALL"
	Ret       Opcode = "RET"
	RetV      Opcode = "RET_V"

	// Push/Pop move a value on/off the VM's operand stack; the backend uses
	// these to marshal CALL arguments and retrieve a callee's return value,
	// since CALL's own textual form ("CALL target argc") carries no operand
	// list of its own (§4.7, §4.8).
	Push Opcode = "PUSH"
	Pop  Opcode = "POP"

	// Reserved built-in call targets (never IR function names).
	IndexBuiltinPrefix    = "__index_"
	SetIndexBuiltinPrefix = "__setindex_"
	SyscallTarget         = "syscall"
)

// The per-operator tables below (arithAdd, arithSub, ...) let the expression builder pick an opcode
// family from a combined operand width in one place.
var arithAdd = map[types.Kind]Opcode{types.Byte: AddI32, types.Short: AddI32, types.Int: AddI32, types.Long: AddI64, types.Float: AddF32, types.Double: AddF64}
var arithSub = map[types.Kind]Opcode{types.Byte: SubI32, types.Short: SubI32, types.Int: SubI32, types.Long: SubI64, types.Float: SubF32, types.Double: SubF64}
var arithMul = map[types.Kind]Opcode{types.Byte: MulI32, types.Short: MulI32, types.Int: MulI32, types.Long: MulI64, types.Float: MulF32, types.Double: MulF64}
var arithDiv = map[types.Kind]Opcode{types.Byte: DivI32, types.Short: DivI32, types.Int: DivI32, types.Long: DivI64, types.Float: DivF32, types.Double: DivF64}
var arithMod = map[types.Kind]Opcode{types.Byte: ModI32, types.Short: ModI32, types.Int: ModI32, types.Long: ModI64}

func ArithOpcode(op string, width types.Kind) (Opcode, bool) {
	var table map[types.Kind]Opcode
	switch op {
	case "+":
		table = arithAdd
	case "-":
		table = arithSub
	case "*":
		table = arithMul
	case "/":
		table = arithDiv
	case "%":
		table = arithMod
	default:
		return "", false
	}
	oc, ok := table[width]
	return oc, ok
}

var bitwiseAnd = map[types.Kind]Opcode{types.Byte: AndI32, types.Short: AndI32, types.Int: AndI32, types.Long: AndI64}
var bitwiseOr = map[types.Kind]Opcode{types.Byte: OrI32, types.Short: OrI32, types.Int: OrI32, types.Long: OrI64}
var bitwiseXor = map[types.Kind]Opcode{types.Byte: XorI32, types.Short: XorI32, types.Int: XorI32, types.Long: XorI64}
var bitwiseShl = map[types.Kind]Opcode{types.Byte: ShlI32, types.Short: ShlI32, types.Int: ShlI32, types.Long: ShlI64}
var bitwiseShr = map[types.Kind]Opcode{types.Byte: ShrI32, types.Short: ShrI32, types.Int: ShrI32, types.Long: ShrI64}

func BitwiseOpcode(op string, width types.Kind) (Opcode, bool) {
	var table map[types.Kind]Opcode
	switch op {
	case "&":
		table = bitwiseAnd
	case "|":
		table = bitwiseOr
	case "^":
		table = bitwiseXor
	case "<<":
		table = bitwiseShl
	case ">>":
		table = bitwiseShr
	default:
		return "", false
	}
	oc, ok := table[width]
	return oc, ok
}

func NegOpcode(width types.Kind) (Opcode, bool) {
	switch width {
	case types.Byte, types.Short, types.Int:
		return NegI32, true
	case types.Long:
		return NegI64, true
	case types.Float:
		return NegF32, true
	case types.Double:
		return NegF64, true
	default:
		return "", false
	}
}

type cmpFamily struct{ Eq, Ne, Lt, Le, Gt, Ge Opcode }

var cmpValue = map[types.Kind]cmpFamily{
	types.Byte:   {CmpEqI32, CmpNeI32, CmpLtI32, CmpLeI32, CmpGtI32, CmpGeI32},
	types.Short:  {CmpEqI32, CmpNeI32, CmpLtI32, CmpLeI32, CmpGtI32, CmpGeI32},
	types.Int:    {CmpEqI32, CmpNeI32, CmpLtI32, CmpLeI32, CmpGtI32, CmpGeI32},
	types.Long:   {CmpEqI64, CmpNeI64, CmpLtI64, CmpLeI64, CmpGtI64, CmpGeI64},
	types.Float:  {CmpEqF32, CmpNeF32, CmpLtF32, CmpLeF32, CmpGtF32, CmpGeF32},
	types.Double: {CmpEqF64, CmpNeF64, CmpLtF64, CmpLeF64, CmpGtF64, CmpGeF64},
}

var cmpJump = map[types.Kind]cmpFamily{
	types.Byte:   {CmpEqI32Jump, CmpNeI32Jump, CmpLtI32Jump, CmpLeI32Jump, CmpGtI32Jump, CmpGeI32Jump},
	types.Short:  {CmpEqI32Jump, CmpNeI32Jump, CmpLtI32Jump, CmpLeI32Jump, CmpGtI32Jump, CmpGeI32Jump},
	types.Int:    {CmpEqI32Jump, CmpNeI32Jump, CmpLtI32Jump, CmpLeI32Jump, CmpGtI32Jump, CmpGeI32Jump},
	types.Long:   {CmpEqI64Jump, CmpNeI64Jump, CmpLtI64Jump, CmpLeI64Jump, CmpGtI64Jump, CmpGeI64Jump},
	types.Float:  {CmpEqF32Jump, CmpNeF32Jump, CmpLtF32Jump, CmpLeF32Jump, CmpGtF32Jump, CmpGeF32Jump},
	types.Double: {CmpEqF64Jump, CmpNeF64Jump, CmpLtF64Jump, CmpLeF64Jump, CmpGtF64Jump, CmpGeF64Jump},
}

// CompareOpcode picks the value-producing CMP_* opcode for op at the given
// combined operand width. ref selects the reference-equality variant
// (only valid for == / !=).
func CompareOpcode(op string, width types.Kind, ref bool) (Opcode, bool) {
	if ref {
		switch op {
		case "==":
			return CmpEqR, true
		case "!=":
			return CmpNeR, true
		default:
			return "", false
		}
	}
	fam, ok := cmpValue[width]
	if !ok {
		return "", false
	}
	return pickCmp(op, fam)
}

// CompareJumpOpcode picks the CMP_*_JUMP control-flow opcode.
func CompareJumpOpcode(op string, width types.Kind) (Opcode, bool) {
	fam, ok := cmpJump[width]
	if !ok {
		return "", false
	}
	return pickCmp(op, fam)
}

func pickCmp(op string, fam cmpFamily) (Opcode, bool) {
	switch op {
	case "==":
		return fam.Eq, true
	case "!=":
		return fam.Ne, true
	case "<":
		return fam.Lt, true
	case "<=":
		return fam.Le, true
	case ">":
		return fam.Gt, true
	case ">=":
		return fam.Ge, true
	default:
		return "", false
	}
}

// InvertCompare returns the logically inverted comparison opcode, used by
// the statement builder's conditional-jump contract (jump on false).
func InvertCompare(oc Opcode) (Opcode, bool) {
	inv := map[Opcode]Opcode{
		CmpEqI32Jump: CmpNeI32Jump, CmpNeI32Jump: CmpEqI32Jump,
		CmpLtI32Jump: CmpGeI32Jump, CmpGeI32Jump: CmpLtI32Jump,
		CmpLeI32Jump: CmpGtI32Jump, CmpGtI32Jump: CmpLeI32Jump,
		CmpEqI64Jump: CmpNeI64Jump, CmpNeI64Jump: CmpEqI64Jump,
		CmpLtI64Jump: CmpGeI64Jump, CmpGeI64Jump: CmpLtI64Jump,
		CmpLeI64Jump: CmpGtI64Jump, CmpGtI64Jump: CmpLeI64Jump,
		CmpEqF32Jump: CmpNeF32Jump, CmpNeF32Jump: CmpEqF32Jump,
		CmpLtF32Jump: CmpGeF32Jump, CmpGeF32Jump: CmpLtF32Jump,
		CmpLeF32Jump: CmpGtF32Jump, CmpGtF32Jump: CmpLeF32Jump,
		CmpEqF64Jump: CmpNeF64Jump, CmpNeF64Jump: CmpEqF64Jump,
		CmpLtF64Jump: CmpGeF64Jump, CmpGeF64Jump: CmpLtF64Jump,
		CmpLeF64Jump: CmpGtF64Jump, CmpGtF64Jump: CmpLeF64Jump,
		CmpIEqJump: CmpINeJump, CmpINeJump: CmpIEqJump,
	}
	oc2, ok := inv[oc]
	return oc2, ok
}

// IndexOpcode/SetIndexOpcode build the reserved __index_*/__setindex_*
// built-in call-target names for a given element-type channel.
func IndexOpcode(elem *types.Type) string {
	return IndexBuiltinPrefix + channel(elem)
}

func SetIndexOpcode(elem *types.Type) string {
	return SetIndexBuiltinPrefix + channel(elem)
}

func channel(t *types.Type) string {
	if t == nil {
		return "r"
	}
	switch t.Kind {
	case types.Byte:
		return "b"
	case types.Short:
		return "s"
	case types.Int, types.Bool:
		return "i"
	case types.Long:
		return "l"
	case types.Float:
		return "f"
	case types.Double:
		return "d"
	default:
		return "r"
	}
}
