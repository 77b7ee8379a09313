// Package regalloc assigns VM local-store slots to the builder's virtual
// registers. Unlike the teacher's WUT-4 allocator — which maps a small
// virtual-register set onto eight physical registers plus spill slots —
// the Snow VM's local store has no physical-register limit (§4.6), so the
// allocator here only has to fix slot numbering and record each slot's
// minimum storage width; slot assignment by order of first appearance
// (params first) falls directly out of how internal/build already
// allocates register ids, so slot == register id is a faithful
// implementation of the rule.
package regalloc

import (
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

// Allocation is the per-function result: the number of local-store slots
// the emitted CALL/RET sequence must reserve, and each slot's declared
// type (the emitter discards the result, and the VM's local store is
// untyped at runtime).
type Allocation struct {
	NumSlots int
	SlotType map[int]*types.Type
}

// Slot returns the local-store slot index backing r.
func (a *Allocation) Slot(r *ir.Register) int { return r.ID }

// Allocate walks fn's parameters and every instruction's destination and
// argument registers, recording the highest register id seen and its declared type.
// Parameters are visited first, matching "params first" — though since
// internal/build allocates parameter registers before any body register,
// this is already true of the id ordering itself.
func Allocate(fn *ir.Function) *Allocation {
	a := &Allocation{SlotType: make(map[int]*types.Type)}

	record := func(r *ir.Register) {
		if r == nil {
			return
		}
		if _, seen := a.SlotType[r.ID]; !seen {
			a.SlotType[r.ID] = minimumWidth(r.Type)
		}
		if r.ID+1 > a.NumSlots {
			a.NumSlots = r.ID + 1
		}
	}

	for _, p := range fn.Params {
		record(p)
	}
	for _, instr := range fn.Body {
		record(instr.Dest)
		for _, v := range instr.Args {
			if reg, ok := v.(*ir.Register); ok {
				record(reg)
			}
		}
	}
	return a
}

// minimumWidth narrows a nil/Any type down to Int for slot bookkeeping
// purposes — an untyped register still occupies exactly one local-store
// slot at runtime.
func minimumWidth(t *types.Type) *types.Type {
	if t == nil {
		return types.IntType
	}
	return t
}
