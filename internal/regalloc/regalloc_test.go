package regalloc

import (
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
	"testing"
)

func TestAllocateSlotEqualsRegisterID(t *testing.T) {
	fn := ir.NewFunction("Math.add", "int")
	p0 := fn.NewReg()
	p0.Type = types.IntType
	p1 := fn.NewReg()
	p1.Type = types.IntType
	fn.AddParam(p0)
	fn.AddParam(p1)

	dest := fn.NewReg()
	dest.Type = types.IntType
	fn.Emit(ir.NewInstr(ir.AddI32, dest, p0, p1))
	fn.Emit(ir.NewInstr(ir.RetV, nil, dest))

	alloc := Allocate(fn)
	if alloc.Slot(p0) != p0.ID || alloc.Slot(p1) != p1.ID || alloc.Slot(dest) != dest.ID {
		t.Fatalf("expected slot == register id for every register")
	}
	if alloc.NumSlots != dest.ID+1 {
		t.Fatalf("NumSlots = %d, want %d", alloc.NumSlots, dest.ID+1)
	}
}

func TestAllocateRecordsUntypedRegisterAsInt(t *testing.T) {
	fn := ir.NewFunction("M.f", "void")
	r := fn.NewReg()
	fn.Emit(ir.NewInstr(ir.LoadConst, r, ir.IntConst(1, types.Int)))

	alloc := Allocate(fn)
	if alloc.SlotType[r.ID] != types.IntType {
		t.Fatalf("expected untyped register to default to IntType, got %v", alloc.SlotType[r.ID])
	}
}

func TestAllocateCountsOnlyHighestRegisterSeen(t *testing.T) {
	fn := ir.NewFunction("M.f", "void")
	a := fn.NewReg()
	b := fn.NewReg()
	// b is never a Dest, only an Arg; NumSlots should still reserve its
	// slot once any instruction refers to it.
	fn.Emit(ir.NewInstr(ir.AddI32, a, b, b))

	alloc := Allocate(fn)
	if alloc.NumSlots != b.ID+1 {
		t.Fatalf("NumSlots = %d, want %d", alloc.NumSlots, b.ID+1)
	}
}
