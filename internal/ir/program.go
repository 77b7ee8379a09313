package ir

import "strings"

// Program is an ordered list of IR functions, entry-normalized so that the
// first function named "main" or "*.main" (if any) sits at index 0.
type Program struct {
	Functions []*Function
}

func NewProgram() *Program { return &Program{} }

func (p *Program) Add(f *Function) { p.Functions = append(p.Functions, f) }

// Normalize moves the first function named "main" or "*.main" to index 0,
// leaving relative order of everything else unchanged.
func (p *Program) Normalize() {
	idx := -1
	for i, f := range p.Functions {
		if isMainName(f.Name) {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return
	}
	main := p.Functions[idx]
	rest := make([]*Function, 0, len(p.Functions))
	rest = append(rest, main)
	rest = append(rest, p.Functions[:idx]...)
	rest = append(rest, p.Functions[idx+1:]...)
	p.Functions = rest
}

func isMainName(name string) bool {
	if name == "main" {
		return true
	}
	return strings.HasSuffix(name, ".main")
}

// Lookup finds a function by its qualified name.
func (p *Program) Lookup(name string) (*Function, bool) {
	for _, f := range p.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
