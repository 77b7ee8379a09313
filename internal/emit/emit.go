// Package emit is the backend: it lowers a register-allocated ir.Program
// into the textual ".water" VM code spec.md §4.7/§6 describes, wrapping a
// bufio.Writer the way the teacher's lang/ygen.Emitter does, with one
// typed helper per instruction shape instead of one per WUT-4 mnemonic.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/regalloc"
)

// Emitter wraps the buffered output stream every function is written to;
// a write error is sticky in the buffer and reported by Emit's final Flush.
type Emitter struct {
	out *bufio.Writer
}

func New(w io.Writer) *Emitter {
	return &Emitter{out: bufio.NewWriter(w)}
}

// Emit writes every function in prog to the underlying writer, running the
// peephole cleanup pass over each function's body first.
func (e *Emitter) Emit(prog *ir.Program) error {
	for _, fn := range prog.Functions {
		body := Peephole(fn.Body)
		if err := e.emitFunction(fn, body); err != nil {
			return err
		}
	}
	return e.out.Flush()
}

func (e *Emitter) emitFunction(fn *ir.Function, body []*ir.Instr) error {
	regalloc.Allocate(fn) // result unused: slot == register id, so emission needs no slot map

	fmt.Fprintf(e.out, "# func %s\n", fn.Name)
	for _, instr := range body {
		if err := e.emitInstr(instr); err != nil {
			return err
		}
	}
	fmt.Fprintln(e.out)
	return nil
}

func (e *Emitter) emitInstr(instr *ir.Instr) error {
	switch instr.Op {
	case ir.Label_:
		fmt.Fprintf(e.out, "LABEL %s\n", instr.Label)
		return nil
	case ir.Jump:
		fmt.Fprintf(e.out, "JUMP %s\n", instr.Target)
		return nil
	case ir.Ret:
		fmt.Fprintln(e.out, "RET")
		return nil
	case ir.RetV:
		fmt.Fprintf(e.out, "RET_V %s\n", formatValue(instr.Args[0]))
		return nil
	case ir.Call:
		for _, a := range instr.Args {
			fmt.Fprintf(e.out, "PUSH %s\n", formatValue(a))
		}
		fmt.Fprintf(e.out, "CALL %s %d\n", instr.CallTarget, len(instr.Args))
		if instr.Dest != nil {
			fmt.Fprintf(e.out, "POP %s\n", formatValue(instr.Dest))
		}
		return nil
	}

	if strings.HasSuffix(string(instr.Op), "_JUMP") {
		fmt.Fprintf(e.out, "%s %s %s %s\n", instr.Op, formatValue(instr.Args[0]), formatValue(instr.Args[1]), instr.Target)
		return nil
	}

	var parts []string
	parts = append(parts, string(instr.Op))
	if instr.Dest != nil {
		parts = append(parts, formatValue(instr.Dest))
	}
	for _, a := range instr.Args {
		parts = append(parts, formatValue(a))
	}
	fmt.Fprintln(e.out, strings.Join(parts, " "))
	return nil
}

func formatValue(v ir.Value) string {
	switch x := v.(type) {
	case *ir.Register:
		return fmt.Sprintf("r%d", x.ID)
	case ir.Label:
		return string(x)
	case *ir.Constant:
		return formatConstant(x)
	}
	return "?"
}

func formatConstant(c *ir.Constant) string {
	switch c.Kind {
	case ir.ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ir.ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ir.ConstBool:
		if c.Bool {
			return "1"
		}
		return "0"
	case ir.ConstString:
		return quoteString(c.Str)
	case ir.ConstNull:
		return "null"
	case ir.ConstList:
		items := make([]string, len(c.List))
		for i, item := range c.List {
			items[i] = formatConstant(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return "?"
}

// quoteString escapes a string constant per the .water grammar's quoted-
// string rule: backslash and double-quote are escaped, control characters
// use their common escapes.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
