package ir

import "github.com/snowlang/snow/internal/types"

// Instr is one IR instruction: an opcode, an optional destination
// register, and an ordered operand list of IR values.
type Instr struct {
	Op   Opcode
	Dest *Register // nil if the opcode doesn't produce a value
	Args []Value

	// Label/Target carry the symbolic addresses for LABEL/JUMP/CMP_*_JUMP;
	// kept as distinct fields (rather than folded into Args) for the same
	// reason the teacher's IRInstr keeps Label/Target apart from Args: jump
	// targets are resolved differently (function-local label table) than
	// value operands.
	Label  Label // for the LABEL pseudo-op
	Target Label // for JUMP and CMP_*_JUMP

	// CallTarget is the qualified function name (or reserved built-in) for
	// CALL; the argc of the textual VM form "CALL target argc" is len(Args).
	CallTarget string
}

func NewInstr(op Opcode, dest *Register, args ...Value) *Instr {
	return &Instr{Op: op, Dest: dest, Args: args}
}

func NewLabelInstr(l Label) *Instr { return &Instr{Op: Label_, Label: l} }

func NewJump(target Label) *Instr { return &Instr{Op: Jump, Target: target} }

func NewCompareJump(op Opcode, a, b Value, target Label) *Instr {
	return &Instr{Op: op, Args: []Value{a, b}, Target: target}
}

func NewCall(dest *Register, target string, args ...Value) *Instr {
	return &Instr{Op: Call, Dest: dest, CallTarget: target, Args: args}
}

func NewRet() *Instr { return &Instr{Op: Ret} }

func NewRetV(v Value) *Instr { return &Instr{Op: RetV, Args: []Value{v}} }

// NewMove lowers an explicit register-to-register move to the add-with-zero
// form the spec mandates (§3: "move (modeled as add-with-zero)").
func NewMove(dest, src *Register) *Instr {
	width := types.Int
	if dest.Type != nil {
		width = dest.Type.Kind
	}
	oc, ok := ArithOpcode("+", width)
	if !ok {
		oc = AddI32
	}
	return &Instr{Op: oc, Dest: dest, Args: []Value{src, Zero(width)}}
}
