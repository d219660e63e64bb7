// internal/eval/scope.go
package eval

import "sst/internal/memory"

// binding is a name's runtime state. Mutability and types were already
// enforced statically; the flag is kept so the invariant is cheap to
// assert in tests.
type binding struct {
	mutable bool
	val     Value
}

// scopeRec is one record in the scope arena. Scopes reference their
// parent by index rather than by pointer, and each record owns exactly
// one memory arena.
type scopeRec struct {
	parent int // index into Evaluator.scopes, -1 for the root
	mem    memory.ScopeID
	vars   map[string]*binding
}

// pushScope opens a child of the current scope and makes it current.
func (e *Evaluator) pushScope() {
	rec := scopeRec{
		parent: e.current,
		mem:    e.mem.EnterScope(),
		vars:   make(map[string]*binding),
	}
	e.scopes = append(e.scopes, rec)
	e.current = len(e.scopes) - 1
}

// popScope releases the current scope's arena and returns to the
// parent. Scope lifetimes are strictly LIFO, so the record being
// popped is always the last one.
func (e *Evaluator) popScope() {
	rec := e.scopes[e.current]
	e.mem.Release(rec.mem)
	e.scopes = e.scopes[:e.current]
	e.current = rec.parent
}

// lookup walks the chain outward and returns the binding plus the
// index of the scope that owns it.
func (e *Evaluator) lookup(name string) (*binding, int, bool) {
	for idx := e.current; idx >= 0; idx = e.scopes[idx].parent {
		if b, ok := e.scopes[idx].vars[name]; ok {
			return b, idx, true
		}
	}
	return nil, -1, false
}

func (e *Evaluator) bind(name string, mutable bool, val Value) {
	e.scopes[e.current].vars[name] = &binding{mutable: mutable, val: val}
}
