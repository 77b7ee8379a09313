package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

func TestEmitGenericInstruction(t *testing.T) {
	fn := ir.NewFunction("Math.add", "int")
	a := fn.NewReg()
	b := fn.NewReg()
	a.Type, b.Type = types.IntType, types.IntType
	fn.AddParam(a)
	fn.AddParam(b)
	dest := fn.NewReg()
	dest.Type = types.IntType
	fn.Emit(ir.NewInstr(ir.AddI32, dest, a, b))
	fn.Emit(ir.NewInstr(ir.RetV, nil, dest))

	prog := ir.NewProgram()
	prog.Add(fn)

	var buf bytes.Buffer
	if err := New(&buf).Emit(prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "# func Math.add") {
		t.Errorf("missing function header, got:\n%s", out)
	}
	if !strings.Contains(out, "ADD_I32 r2 r0 r1") {
		t.Errorf("missing ADD_I32 line, got:\n%s", out)
	}
	if !strings.Contains(out, "RET_V r2") {
		t.Errorf("missing RET_V line, got:\n%s", out)
	}
}

func TestEmitCallExpandsToPushCallPop(t *testing.T) {
	fn := ir.NewFunction("M._start", "void")
	dest := fn.NewReg()
	one := fn.NewReg()
	two := fn.NewReg()
	fn.Emit(ir.NewCall(dest, "Math.add", one, two))
	fn.Emit(ir.NewInstr(ir.Ret, nil))

	prog := ir.NewProgram()
	prog.Add(fn)

	var buf bytes.Buffer
	if err := New(&buf).Emit(prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	want := []string{"PUSH r1", "PUSH r2", "CALL Math.add 2", "POP r0"}
	out := buf.String()
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("expected output to contain %q, got:\n%s", line, out)
		}
	}
}

func TestEmitVoidCallHasNoPop(t *testing.T) {
	fn := ir.NewFunction("M._start", "void")
	fn.Emit(ir.NewCall(nil, "Console.log"))
	fn.Emit(ir.NewInstr(ir.Ret, nil))

	prog := ir.NewProgram()
	prog.Add(fn)

	var buf bytes.Buffer
	if err := New(&buf).Emit(prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(buf.String(), "POP") {
		t.Errorf("void call should not emit a POP, got:\n%s", buf.String())
	}
}

func TestQuoteStringEscaping(t *testing.T) {
	got := quoteString("a\nb\tc\"d\\e")
	want := `"a\nb\tc\"d\\e"`
	if got != want {
		t.Errorf("quoteString = %q, want %q", got, want)
	}
}

// TestEmitParseRoundTrip covers the "Emit/parse stability" testable
// property: emitting VM text and re-tokenizing yields the same
// opcode/operand list.
func TestEmitParseRoundTrip(t *testing.T) {
	fn := ir.NewFunction("Math.add", "int")
	a := fn.NewReg()
	b := fn.NewReg()
	a.Type, b.Type = types.IntType, types.IntType
	fn.AddParam(a)
	fn.AddParam(b)
	dest := fn.NewReg()
	dest.Type = types.IntType
	fn.Emit(ir.NewInstr(ir.AddI32, dest, a, b))
	fn.Emit(ir.NewInstr(ir.RetV, nil, dest))

	prog := ir.NewProgram()
	prog.Add(fn)

	var buf bytes.Buffer
	if err := New(&buf).Emit(prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	first := buf.String()

	lines, err := Disassemble(strings.NewReader(first))
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	var relisted bytes.Buffer
	if err := WriteListing(&relisted, lines); err != nil {
		t.Fatalf("WriteListing: %v", err)
	}
	if !strings.Contains(relisted.String(), "ADD_I32 r2 r0 r1") {
		t.Errorf("re-tokenized listing lost the ADD_I32 instruction:\n%s", relisted.String())
	}
}
