package vm

import (
	"github.com/snowlang/snow/internal/ir"
)

// execArith dispatches a typed arithmetic/bitwise/compare/reference-add
// opcode, storing its result in instr.Dest.
func (vm *VM) execArith(f *frame, instr *CInstr) error {
	op := ir.Opcode(instr.Op)

	if op == ir.AddR {
		return vm.execAddR(f, instr)
	}
	if op == ir.CmpEqR || op == ir.CmpNeR {
		return vm.execRefCompare(f, instr, op)
	}

	switch op {
	case ir.AddI32, ir.SubI32, ir.MulI32, ir.DivI32, ir.ModI32,
		ir.AddI64, ir.SubI64, ir.MulI64, ir.DivI64, ir.ModI64,
		ir.AndI32, ir.OrI32, ir.XorI32, ir.ShlI32, ir.ShrI32,
		ir.AndI64, ir.OrI64, ir.XorI64, ir.ShlI64, ir.ShrI64:
		return vm.execIntBinary(f, instr, op)
	case ir.AddF32, ir.SubF32, ir.MulF32, ir.DivF32,
		ir.AddF64, ir.SubF64, ir.MulF64, ir.DivF64:
		return vm.execFloatBinary(f, instr, op)
	case ir.NegI32, ir.NegI64:
		return vm.execIntUnary(f, instr, op)
	case ir.NegF32, ir.NegF64:
		return vm.execFloatUnary(f, instr, op)
	}

	switch op {
	case ir.CmpEqI32, ir.CmpNeI32, ir.CmpLtI32, ir.CmpLeI32, ir.CmpGtI32, ir.CmpGeI32,
		ir.CmpEqI64, ir.CmpNeI64, ir.CmpLtI64, ir.CmpLeI64, ir.CmpGtI64, ir.CmpGeI64:
		result, err := vm.compareInt(f, instr, op)
		if err != nil {
			return err
		}
		vm.store(f, instr.Dest, boolValue(result))
		return nil
	case ir.CmpEqF32, ir.CmpNeF32, ir.CmpLtF32, ir.CmpLeF32, ir.CmpGtF32, ir.CmpGeF32,
		ir.CmpEqF64, ir.CmpNeF64, ir.CmpLtF64, ir.CmpLeF64, ir.CmpGtF64, ir.CmpGeF64:
		result, err := vm.compareFloat(f, instr, op)
		if err != nil {
			return err
		}
		vm.store(f, instr.Dest, boolValue(result))
		return nil
	}

	return trap(f.fn, f.pc, "unrecognized opcode %q", instr.Op)
}

// boolValue stores a comparison result as the int64 0/1 the rest of the
// runtime already treats a bool as (§3: "bool-as-0-1").
func boolValue(b bool) Value {
	if b {
		return int64(1)
	}
	return int64(0)
}

func (vm *VM) operands(f *frame, instr *CInstr) (Value, Value, error) {
	a, err := vm.resolve(f, instr.Args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := vm.resolve(f, instr.Args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (vm *VM) execIntBinary(f *frame, instr *CInstr, op ir.Opcode) error {
	av, bv, err := vm.operands(f, instr)
	if err != nil {
		return err
	}
	a, ok1 := asInt64(av)
	b, ok2 := asInt64(bv)
	if !ok1 && ok2 && b == 0 && (op == ir.AddI32 || op == ir.AddI64) {
		// Add-with-zero is also the IR's register move, which carries
		// strings, arrays and struct instances as well as integers.
		vm.store(f, instr.Dest, av)
		return nil
	}
	if !ok1 || !ok2 {
		return trap(f.fn, f.pc, "%s requires integer operands", instr.Op)
	}
	var result int64
	switch op {
	case ir.AddI32, ir.AddI64:
		result = a + b
	case ir.SubI32, ir.SubI64:
		result = a - b
	case ir.MulI32, ir.MulI64:
		result = a * b
	case ir.DivI32, ir.DivI64:
		if b == 0 {
			return trap(f.fn, f.pc, "integer division by zero")
		}
		result = a / b
	case ir.ModI32, ir.ModI64:
		if b == 0 {
			return trap(f.fn, f.pc, "integer division by zero")
		}
		result = a % b
	case ir.AndI32, ir.AndI64:
		result = a & b
	case ir.OrI32, ir.OrI64:
		result = a | b
	case ir.XorI32, ir.XorI64:
		result = a ^ b
	case ir.ShlI32, ir.ShlI64:
		result = a << uint(b)
	case ir.ShrI32, ir.ShrI64:
		result = a >> uint(b)
	}
	vm.store(f, instr.Dest, result)
	return nil
}

func (vm *VM) execFloatBinary(f *frame, instr *CInstr, op ir.Opcode) error {
	av, bv, err := vm.operands(f, instr)
	if err != nil {
		return err
	}
	a, ok1 := asFloat64(av)
	b, ok2 := asFloat64(bv)
	if !ok1 || !ok2 {
		return trap(f.fn, f.pc, "%s requires numeric operands", instr.Op)
	}
	var result float64
	switch op {
	case ir.AddF32, ir.AddF64:
		result = a + b
	case ir.SubF32, ir.SubF64:
		result = a - b
	case ir.MulF32, ir.MulF64:
		result = a * b
	case ir.DivF32, ir.DivF64:
		result = a / b
	}
	vm.store(f, instr.Dest, result)
	return nil
}

func (vm *VM) execIntUnary(f *frame, instr *CInstr, op ir.Opcode) error {
	v, err := vm.resolve(f, instr.Args[0])
	if err != nil {
		return err
	}
	a, ok := asInt64(v)
	if !ok {
		return trap(f.fn, f.pc, "%s requires an integer operand", instr.Op)
	}
	vm.store(f, instr.Dest, -a)
	return nil
}

func (vm *VM) execFloatUnary(f *frame, instr *CInstr, op ir.Opcode) error {
	v, err := vm.resolve(f, instr.Args[0])
	if err != nil {
		return err
	}
	a, ok := asFloat64(v)
	if !ok {
		return trap(f.fn, f.pc, "%s requires a numeric operand", instr.Op)
	}
	vm.store(f, instr.Dest, -a)
	return nil
}

func (vm *VM) compareInt(f *frame, instr *CInstr, op ir.Opcode) (bool, error) {
	av, bv, err := vm.operands(f, instr)
	if err != nil {
		return false, err
	}
	a, ok1 := asInt64(av)
	b, ok2 := asInt64(bv)
	if !ok1 || !ok2 {
		return false, trap(f.fn, f.pc, "%s requires integer operands", instr.Op)
	}
	switch op {
	case ir.CmpEqI32, ir.CmpEqI64:
		return a == b, nil
	case ir.CmpNeI32, ir.CmpNeI64:
		return a != b, nil
	case ir.CmpLtI32, ir.CmpLtI64:
		return a < b, nil
	case ir.CmpLeI32, ir.CmpLeI64:
		return a <= b, nil
	case ir.CmpGtI32, ir.CmpGtI64:
		return a > b, nil
	case ir.CmpGeI32, ir.CmpGeI64:
		return a >= b, nil
	}
	return false, trap(f.fn, f.pc, "unrecognized compare opcode %q", instr.Op)
}

func (vm *VM) compareFloat(f *frame, instr *CInstr, op ir.Opcode) (bool, error) {
	av, bv, err := vm.operands(f, instr)
	if err != nil {
		return false, err
	}
	a, ok1 := asFloat64(av)
	b, ok2 := asFloat64(bv)
	if !ok1 || !ok2 {
		return false, trap(f.fn, f.pc, "%s requires numeric operands", instr.Op)
	}
	switch op {
	case ir.CmpEqF32, ir.CmpEqF64:
		return a == b, nil
	case ir.CmpNeF32, ir.CmpNeF64:
		return a != b, nil
	case ir.CmpLtF32, ir.CmpLtF64:
		return a < b, nil
	case ir.CmpLeF32, ir.CmpLeF64:
		return a <= b, nil
	case ir.CmpGtF32, ir.CmpGtF64:
		return a > b, nil
	case ir.CmpGeF32, ir.CmpGeF64:
		return a >= b, nil
	}
	return false, trap(f.fn, f.pc, "unrecognized compare opcode %q", instr.Op)
}

// execAddR implements ADD_R: string concatenation when either operand is a
// string, otherwise list-container append/build for two array operands.
func (vm *VM) execAddR(f *frame, instr *CInstr) error {
	av, bv, err := vm.operands(f, instr)
	if err != nil {
		return err
	}
	if as, ok := asString(av); ok {
		bs, _ := toDisplayString(bv)
		vm.store(f, instr.Dest, as+bs)
		return nil
	}
	if bs, ok := asString(bv); ok {
		as, _ := toDisplayString(av)
		vm.store(f, instr.Dest, as+bs)
		return nil
	}
	aArr, aOK := asArray(av)
	bArr, bOK := asArray(bv)
	if aOK && bOK {
		merged := make([]Value, 0, len(aArr.Elems)+len(bArr.Elems))
		merged = append(merged, aArr.Elems...)
		merged = append(merged, bArr.Elems...)
		vm.store(f, instr.Dest, &Array{Elems: merged})
		return nil
	}
	return trap(f.fn, f.pc, "ADD_R requires string or array operands")
}

func (vm *VM) execRefCompare(f *frame, instr *CInstr, op ir.Opcode) error {
	a, b, err := vm.operands(f, instr)
	if err != nil {
		return err
	}
	eq := refEqual(a, b)
	if op == ir.CmpNeR {
		eq = !eq
	}
	vm.store(f, instr.Dest, boolValue(eq))
	return nil
}

func (vm *VM) evalCompare(f *frame, instr *CInstr) (bool, error) {
	op := ir.Opcode(instr.Op)
	if op == ir.CmpIEqJump || op == ir.CmpINeJump {
		a, b, err := vm.operands(f, instr)
		if err != nil {
			return false, err
		}
		ai, _ := asInt64(a)
		bi, _ := asInt64(b)
		eq := ai == bi
		if op == ir.CmpINeJump {
			return !eq, nil
		}
		return eq, nil
	}
	switch op {
	case ir.CmpEqI32Jump, ir.CmpNeI32Jump, ir.CmpLtI32Jump, ir.CmpLeI32Jump, ir.CmpGtI32Jump, ir.CmpGeI32Jump,
		ir.CmpEqI64Jump, ir.CmpNeI64Jump, ir.CmpLtI64Jump, ir.CmpLeI64Jump, ir.CmpGtI64Jump, ir.CmpGeI64Jump:
		return vm.compareInt(f, instr, jumpToValueOpcode(op))
	case ir.CmpEqF32Jump, ir.CmpNeF32Jump, ir.CmpLtF32Jump, ir.CmpLeF32Jump, ir.CmpGtF32Jump, ir.CmpGeF32Jump,
		ir.CmpEqF64Jump, ir.CmpNeF64Jump, ir.CmpLtF64Jump, ir.CmpLeF64Jump, ir.CmpGtF64Jump, ir.CmpGeF64Jump:
		return vm.compareFloat(f, instr, jumpToValueOpcode(op))
	}
	return false, trap(f.fn, f.pc, "unrecognized jump opcode %q", instr.Op)
}

// jumpToValueOpcode maps a CMP_*_JUMP opcode back to its value-producing
// CMP_* counterpart so compareInt/compareFloat can be shared by both.
func jumpToValueOpcode(op ir.Opcode) ir.Opcode {
	m := map[ir.Opcode]ir.Opcode{
		ir.CmpEqI32Jump: ir.CmpEqI32, ir.CmpNeI32Jump: ir.CmpNeI32, ir.CmpLtI32Jump: ir.CmpLtI32,
		ir.CmpLeI32Jump: ir.CmpLeI32, ir.CmpGtI32Jump: ir.CmpGtI32, ir.CmpGeI32Jump: ir.CmpGeI32,
		ir.CmpEqI64Jump: ir.CmpEqI64, ir.CmpNeI64Jump: ir.CmpNeI64, ir.CmpLtI64Jump: ir.CmpLtI64,
		ir.CmpLeI64Jump: ir.CmpLeI64, ir.CmpGtI64Jump: ir.CmpGtI64, ir.CmpGeI64Jump: ir.CmpGeI64,
		ir.CmpEqF32Jump: ir.CmpEqF32, ir.CmpNeF32Jump: ir.CmpNeF32, ir.CmpLtF32Jump: ir.CmpLtF32,
		ir.CmpLeF32Jump: ir.CmpLeF32, ir.CmpGtF32Jump: ir.CmpGtF32, ir.CmpGeF32Jump: ir.CmpGeF32,
		ir.CmpEqF64Jump: ir.CmpEqF64, ir.CmpNeF64Jump: ir.CmpNeF64, ir.CmpLtF64Jump: ir.CmpLtF64,
		ir.CmpLeF64Jump: ir.CmpLeF64, ir.CmpGtF64Jump: ir.CmpGtF64, ir.CmpGeF64Jump: ir.CmpGeF64,
	}
	return m[op]
}

// toDisplayString renders any runtime Value as the text ADD_R's string
// channel concatenates, mirroring how a source-level string-concat
// expression stringifies a non-string operand.
func toDisplayString(v Value) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int64:
		return intToString(x), true
	case float64:
		return floatToString(x), true
	case nil:
		return "null", true
	}
	return "", false
}
