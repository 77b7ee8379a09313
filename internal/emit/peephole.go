package emit

import "github.com/snowlang/snow/internal/ir"

// Peephole runs a local cleanup pass over one function's instruction stream
// before textual emission, mirroring the teacher's lang/ypeep pass: it
// removes redundant self-moves and collapses a jump that targets the very
// next instruction, both single-pass, no-lookahead-beyond-one rewrites.
func Peephole(body []*ir.Instr) []*ir.Instr {
	body = dropRedundantMoves(body)
	body = dropJumpToNext(body)
	return body
}

// dropRedundantMoves removes an ADD_*(dest, dest, 0) move whose destination
// and source register are the same — the no-op NewMove produces when a
// value is built into the very register it is read from (e.g. x = x).
func dropRedundantMoves(body []*ir.Instr) []*ir.Instr {
	out := make([]*ir.Instr, 0, len(body))
	for _, instr := range body {
		if isSelfMove(instr) {
			continue
		}
		out = append(out, instr)
	}
	return out
}

func isSelfMove(instr *ir.Instr) bool {
	switch instr.Op {
	case ir.AddI32, ir.AddI64, ir.AddF32, ir.AddF64:
	default:
		return false
	}
	if instr.Dest == nil || len(instr.Args) != 2 {
		return false
	}
	src, ok := instr.Args[0].(*ir.Register)
	if !ok || src.ID != instr.Dest.ID {
		return false
	}
	zero, ok := instr.Args[1].(*ir.Constant)
	return ok && ((zero.Kind == ir.ConstInt && zero.Int == 0) ||
		(zero.Kind == ir.ConstFloat && zero.Float == 0))
}

// dropJumpToNext removes an unconditional JUMP whose target label is the
// very next emitted instruction (e.g. a continue at the end of a loop body,
// right before the step label). Only the immediately following instruction
// is checked: a JUMP separated from its label by another LABEL is kept.
func dropJumpToNext(body []*ir.Instr) []*ir.Instr {
	out := make([]*ir.Instr, 0, len(body))
	for i, instr := range body {
		if instr.Op == ir.Jump && i+1 < len(body) {
			next := body[i+1]
			if next.Op == ir.Label_ && next.Label == instr.Target {
				continue
			}
		}
		out = append(out, instr)
	}
	return out
}
