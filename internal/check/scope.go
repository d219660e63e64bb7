// internal/check/scope.go
package check

import "sst/internal/parser"

// binding records what the checker knows about a name: its declared
// type and whether assignment to it is allowed. Types are fixed at
// declaration and never change.
type binding struct {
	declType parser.Type
	mutable  bool
}

type scope struct {
	parent *scope
	vars   map[string]*binding
}

func newScope(parent *scope) *scope {
	return &scope{
		parent: parent,
		vars:   make(map[string]*binding),
	}
}

// lookup walks the scope chain outward.
func (s *scope) lookup(name string) (*binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// definedHere reports whether name is bound in this scope itself,
// ignoring ancestors. Shadowing an outer name is legal; redeclaring in
// the same scope is not.
func (s *scope) definedHere(name string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *scope) define(name string, b *binding) {
	s.vars[name] = b
}
