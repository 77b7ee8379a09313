package vm

import (
	"fmt"
	"io"
)

// Tracer writes one line per executed instruction, in the spirit of the
// teacher's own CPU emulator trace writer: a plain fmt.Fprintf sink, no
// buffering or formatting options beyond what --trace needs.
type Tracer struct {
	out io.Writer
}

func NewTracer(out io.Writer) *Tracer {
	return &Tracer{out: out}
}

func (t *Tracer) traceInstr(fn *CFunction, pc int, instr *CInstr) {
	fmt.Fprintf(t.out, "%s+%d: %s\n", fn.Name, pc, instr.Op)
}
