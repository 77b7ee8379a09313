// Package diag is the flat diagnostic accumulator used by the semantic
// analyzer and IR builder: errors are collected rather than raised, so a
// pass can keep checking after the first failure and report everything it
// found in one shot.
package diag

import "fmt"

// Severity distinguishes a hard error from a warning. Only errors stop
// emission; warnings are informational.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported problem, optionally located in source.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

// Bag accumulates diagnostics across a single compilation pass. The zero
// value is ready to use.
type Bag struct {
	items []Diagnostic
}

// Errorf records a fatal diagnostic with no source location.
func (b *Bag) Errorf(format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...)})
}

// ErrorAt records a fatal diagnostic at a source location.
func (b *Bag) ErrorAt(file string, line int, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{
		Severity: Error,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// WarnAt records a non-fatal diagnostic at a source location.
func (b *Bag) WarnAt(file string, line int, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{
		Severity: Warning,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every diagnostic recorded so far, in recording order.
func (b *Bag) All() []Diagnostic {
	return b.items
}

// Errors returns only the Error-severity diagnostics, in recording order.
func (b *Bag) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// Strings renders every diagnostic as "file:line: severity: message".
func (b *Bag) Strings() []string {
	out := make([]string, len(b.items))
	for i, d := range b.items {
		out[i] = d.String()
	}
	return out
}

// Reset clears all recorded diagnostics, e.g. between functions in the
// per-function scope-hygiene contract.
func (b *Bag) Reset() {
	b.items = nil
}
