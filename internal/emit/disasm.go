package emit

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Line is one decoded line of ".water" text: an address (its index among
// non-comment, non-blank lines within the current function), the raw
// mnemonic/operand tokens, and the enclosing function name.
type Line struct {
	Func string
	Addr int
	Text string
}

// Disassemble reads ".water" text and returns one Line per instruction,
// annotated with its address within its function. Unlike the teacher's
// lang/yasm.Disassemble, which decodes packed binary words back into
// mnemonics, this format is already text — disassembly here is address
// bookkeeping and comment/blank-line filtering, not bit decoding.
func Disassemble(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	var lines []Line
	currentFunc := ""
	addr := 0

	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "# func ") {
			currentFunc = strings.TrimPrefix(raw, "# func ")
			addr = 0
			continue
		}
		if strings.HasPrefix(raw, "#") {
			continue
		}
		lines = append(lines, Line{Func: currentFunc, Addr: addr, Text: raw})
		addr++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteListing pretty-prints decoded lines as "func+addr: text", one per
// line, for human inspection (the --debug/--trace CLI paths).
func WriteListing(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := fmt.Fprintf(bw, "%s+%-4d %s\n", l.Func, l.Addr, l.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}
