// Package scope implements the per-function name table the expression and
// statement builders consult while lowering one function body: a flat
// mapping from source name to register, declared type, and an optional
// compile-time constant value used for folding.
package scope

import (
	"github.com/snowlang/snow/internal/ir"
	"github.com/snowlang/snow/internal/types"
)

type binding struct {
	reg   *ir.Register
	typ   *types.Type
	const_ *ir.Constant // nil if not currently constant-foldable
}

// Scope is flat: if/loop bodies nest lexically in the AST but share this
// same register namespace, matching spec.md's "scopes are flat (one scope
// per function)" rule.
type Scope struct {
	names    map[string]*binding
	regTypes map[int]*types.Type // register id -> type, for concat/channel detection
}

func New() *Scope {
	return &Scope{
		names:    make(map[string]*binding),
		regTypes: make(map[int]*types.Type),
	}
}

// Declare binds name to a freshly allocated register of the given type.
func (s *Scope) Declare(name string, typ *types.Type, fn *ir.Function) *ir.Register {
	reg := fn.NewReg()
	reg.Type = typ
	s.names[name] = &binding{reg: reg, typ: typ}
	s.regTypes[reg.ID] = typ
	return reg
}

// DeclareReg binds name to an existing register (used when the caller
// already allocated one, e.g. function parameters).
func (s *Scope) DeclareReg(name string, typ *types.Type, reg *ir.Register) {
	s.names[name] = &binding{reg: reg, typ: typ}
	s.regTypes[reg.ID] = typ
}

// Lookup returns the register bound to name, if any.
func (s *Scope) Lookup(name string) (*ir.Register, bool) {
	b, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return b.reg, true
}

// LookupType returns the declared type of name, if any.
func (s *Scope) LookupType(name string) (*types.Type, bool) {
	b, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return b.typ, true
}

// SetConstValue records the current compile-time value of name, enabling
// downstream constant folding. Any later assignment to name must call
// ClearConstValue.
func (s *Scope) SetConstValue(name string, v *ir.Constant) {
	b, ok := s.names[name]
	if !ok {
		return
	}
	b.const_ = v
}

// GetConstValue returns the recorded compile-time value of name, if the
// binding still carries one.
func (s *Scope) GetConstValue(name string) (*ir.Constant, bool) {
	b, ok := s.names[name]
	if !ok || b.const_ == nil {
		return nil, false
	}
	return b.const_, true
}

// ClearConstValue drops the constant binding for name; called on any
// non-foldable assignment to keep the fold set sound.
func (s *Scope) ClearConstValue(name string) {
	b, ok := s.names[name]
	if !ok {
		return
	}
	b.const_ = nil
}

// Types returns a fresh copy of the name -> declared type map, without
// exposing registers.
func (s *Scope) Types() map[string]*types.Type {
	out := make(map[string]*types.Type, len(s.names))
	for name, b := range s.names {
		out[name] = b.typ
	}
	return out
}

// RegisterType returns the declared type of a register previously bound
// in this scope, without re-walking the scope.
func (s *Scope) RegisterType(reg *ir.Register) (*types.Type, bool) {
	t, ok := s.regTypes[reg.ID]
	return t, ok
}

// Names reports every declared name, in no particular order.
func (s *Scope) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	return out
}
