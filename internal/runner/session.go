// internal/runner/session.go
package runner

import (
	"io"

	"sst/internal/check"
	"sst/internal/eval"
)

// Session keeps a checker and an evaluator alive across inputs so the
// REPL can feed statement batches incrementally: bindings declared on
// one line stay visible on the next.
type Session struct {
	checker *check.Checker
	eval    *eval.Evaluator
}

func NewSession(out io.Writer) *Session {
	return &Session{
		checker: check.NewChecker(),
		eval:    eval.New(out),
	}
}

// Eval lexes, parses, checks and executes one input against the
// session's persistent root scope.
func (s *Session) Eval(source string) error {
	prog, err := Parse(source)
	if err != nil {
		return err
	}
	if err := s.checker.Check(prog); err != nil {
		return attachSource(err, source)
	}
	return attachSource(s.eval.Exec(prog), source)
}

// Close releases the session's root scope and every allocation still
// owned by it.
func (s *Session) Close() {
	s.eval.Close()
}
