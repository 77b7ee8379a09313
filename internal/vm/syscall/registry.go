// Package syscall is the §4.9 dispatch table: a fixed set of named
// handlers, grouped into the FD/Directory/Console/Multiplex/Network/
// Process-Thread/Array/System-info/Sync/Time families, each resource-
// creating family backed by its own small-integer registry (§4.9's
// registry contract: "lookup by id returns the underlying host object;
// close/destroy removes the binding").
//
// The builder lowers syscall(...) to a CALL against the reserved target
// "syscall" whose first argument names the handler; internal/vm's CALL
// dispatch treats that argument as an opaque string rather than a
// separately-maintained integer code, so Table here is keyed by name —
// an open decision recorded in the design ledger, not a deviation from
// the family/contract shape §4.9 describes.
package syscall

import (
	"fmt"
	"sync"
)

// Registry assigns small, monotonically increasing integer ids to host
// objects of one kind (fds, sockets, mutexes, ...). Reserved ids 0/1/2 in
// the FD registry are wired up by installStdFDs to stdin/stdout/stderr.
type Registry struct {
	mu     sync.Mutex
	next   int
	values map[int]interface{}
}

func NewRegistry(firstID int) *Registry {
	return &Registry{next: firstID, values: make(map[int]interface{})}
}

// Add allocates a fresh id for v and returns it.
func (r *Registry) Add(v interface{}) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.values[id] = v
	return id
}

// Set installs v at an explicit id (used for the reserved fds 0/1/2).
func (r *Registry) Set(id int, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[id] = v
}

// Get looks up id's registered object.
func (r *Registry) Get(id int) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[id]
	return v, ok
}

// Remove drops id's binding, returning the object that was registered
// there (if any) so the caller can close/release it.
func (r *Registry) Remove(id int) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[id]
	delete(r.values, id)
	return v, ok
}

// Len reports the registry's current size, used by the registry-id-
// discipline property (CLOSE after OPEN restores the prior size).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

var errNotFound = func(kind string, id int) error {
	return fmt.Errorf("%s id %d not registered", kind, id)
}
