// internal/runner/runner.go
package runner

import (
	"io"

	"sst/internal/check"
	"sst/internal/errors"
	"sst/internal/eval"
	"sst/internal/lexer"
	"sst/internal/memory"
	"sst/internal/parser"
)

// Result is what a full run produces: an exit status, the diagnostic
// that stopped the run (nil on success), and the memory counters
// captured after all scopes were released.
type Result struct {
	ExitCode int
	Err      error
	Mem      memory.Stats
}

// Run executes source through the whole pipeline — lex, parse, type
// check, evaluate — writing program output to out. Each phase stops at
// its first error; a program that fails type checking never executes a
// statement.
func Run(source string, out io.Writer) Result {
	prog, err := Parse(source)
	if err != nil {
		return Result{ExitCode: 1, Err: err}
	}

	if err := check.NewChecker().Check(prog); err != nil {
		return Result{ExitCode: 1, Err: attachSource(err, source)}
	}

	e := eval.New(out)
	execErr := e.Exec(prog)
	e.Close()

	res := Result{Mem: e.Mem().Stats()}
	if execErr != nil {
		res.ExitCode = 1
		res.Err = attachSource(execErr, source)
	}
	return res
}

// Parse runs only the front half of the pipeline: lex and parse.
// The check subcommand and the REPL build on it.
func Parse(source string) (*parser.Program, error) {
	tokens, err := lexer.NewScanner(source).ScanTokens()
	if err != nil {
		return nil, attachSource(err, source)
	}
	prog, err := parser.NewParserWithSource(tokens, source).Parse()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// Check runs everything but the evaluator.
func Check(source string) error {
	prog, err := Parse(source)
	if err != nil {
		return err
	}
	return attachSource(check.NewChecker().Check(prog), source)
}

// attachSource adds the offending source line to a diagnostic that
// carries a position but no line text yet.
func attachSource(err error, source string) error {
	if err == nil {
		return nil
	}
	if serr, ok := err.(*errors.Error); ok && serr.Source == "" && serr.Line > 0 {
		serr.Source = errors.SourceLine(source, serr.Line)
	}
	return err
}
