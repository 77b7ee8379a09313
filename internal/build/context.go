// Package build implements the expression, statement, function, and
// program builders: the lowering of an AST into the linear IR, including
// constant folding, struct/method lowering, and scope management (§4.2,
// §4.3, §4.4 of the component design).
package build

import (
	"fmt"

	"github.com/snowlang/snow/internal/ast"
	"github.com/snowlang/snow/internal/diag"
	"github.com/snowlang/snow/internal/globals"
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/scope"
	"github.com/snowlang/snow/internal/types"
)

// loopTarget is one entry of the break/continue target stack, modeled as
// an explicit slice-backed stack owned by the context rather than a
// thread-local or package-level ArrayDeque (§9 "stack-allocated ArrayDeque
// for break/continue targets").
type loopTarget struct {
	breakLabel    ir.Label
	continueLabel ir.Label
}

// Context carries everything one function's worth of building needs:
// the shared global tables, a diagnostics sink, the function and scope
// under construction, the break/continue stack, and the scoped default
// numeric suffix. It replaces the cyclic builder/expr-builder reference
// the source used with a single struct threaded through both (§9).
type Context struct {
	Tables *globals.Tables
	Diags  *diag.Bag

	Module   string
	Fn       *ir.Function
	Scope    *scope.Scope
	thisType *types.Type // nil outside constructors/methods

	loopStack []loopTarget

	// defaultSuffix is set for the duration of one function build (per
	// §4.4: "derived from the return type... cleared... even on
	// failure") and used by the number-literal classifier to coerce a
	// bare literal to the function's return width when no explicit
	// suffix or decimal marker is present.
	defaultSuffix string
}

// buildError is a fatal build-time failure (§7 plane 1): unlike a
// semantic diagnostic, it aborts the current function's build.
type buildError struct{ msg string }

func (e *buildError) Error() string { return e.msg }

func errf(format string, args ...interface{}) error {
	return &buildError{msg: fmt.Sprintf(format, args...)}
}

// WithDefaultSuffix sets the default suffix for the duration of fn,
// restoring the previous value afterward even if fn panics or returns an
// error — the "scoped acquisition pattern that guarantees reset even on
// failure" spec.md §4.4 calls for.
func (c *Context) WithDefaultSuffix(suffix string, fn func() error) error {
	prev := c.defaultSuffix
	c.defaultSuffix = suffix
	defer func() { c.defaultSuffix = prev }()
	return fn()
}

func (c *Context) pushLoop(brk, cont ir.Label) {
	c.loopStack = append(c.loopStack, loopTarget{breakLabel: brk, continueLabel: cont})
}

func (c *Context) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Context) currentLoop() (loopTarget, bool) {
	if len(c.loopStack) == 0 {
		return loopTarget{}, false
	}
	return c.loopStack[len(c.loopStack)-1], true
}

func suffixDefaultFor(returnType string) string {
	switch returnType {
	case "long":
		return "l"
	case "float":
		return "f"
	default:
		return ""
	}
}

// pos renders a Located node's location for error messages without
// reflection (§9 "reflection-based error position extraction").
func pos(n ast.Located) string {
	p := n.SourceLocation()
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}
