package build

import (
	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/ir"
)

// buildSyscall lowers the built-in syscall(subcommand, ...) form to a CALL
// against the reserved "syscall" target. The first argument names the
// syscall (a string constant the VM looks up in the dispatch table each
// time the CALL executes); the remaining arguments are variadic and opaque to the builder.
// "syscall" is never registered in the global function table, so semantic
// analysis's arity/argument check simply never finds a signature to check
// it against — its variadic arity falls out of that, not a special case.
func (c *Context) buildSyscall(x *ast.Call, dest *ir.Register) error {
	if len(x.Args) == 0 {
		return errf("%s: syscall(...) requires a subcommand argument", pos(x))
	}
	argRegs, err := c.buildArgs(x.Args)
	if err != nil {
		return err
	}
	c.Fn.Emit(ir.NewCall(dest, ir.SyscallTarget, regsToValues(argRegs)...))
	return nil
}
